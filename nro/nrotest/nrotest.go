// Package nrotest builds synthetic module images for tests.
package nrotest

import (
	"encoding/binary"
)

// fixed layout of a built image
const (
	ModOff    = 0x100 // MOD0 descriptor
	DynOff    = 0x110 // dynamic table
	SymtabOff = 0x180
	StrtabOff = 0x200
	End       = 0x500
)

type (
	Sym struct {
		Name    string
		Addr    uint64
		Info    uint8
		Size    uint64
		Section uint16
	}
	// Image lays the header in text, MOD0 and the dynamic table at the start
	// of ro, .dynsym at SymtabOff followed by .dynstr at StrtabOff.
	Image struct {
		TextSize uint32 // text covers [0, TextSize)
		ROOff    uint32
		DataOff  uint32
		Syms     []Sym
		ExtraTag bool // adds an unrelated tag before DT_SYMTAB
	}
)

// AlphaBeta holds two defined symbols, a null entry and an undefined import.
var AlphaBeta = []Sym{
	{"beta", 0x2000, 0x21, 8, 2},
	{"", 0, 0, 0, 0},
	{"alpha", 0x1000, 0x12, 4, 1},
	{"undefined_import", 0, 0x12, 0, 0},
}

// Default returns a contiguous image holding syms.
func Default(syms ...Sym) Image {
	return Image{TextSize: 0x100, ROOff: 0x100, DataOff: 0x400, Syms: syms, ExtraTag: true}
}

func (ti Image) Build() []byte {
	b := make([]byte, End)
	copy(b[0x10:], "NRO0")
	binary.LittleEndian.PutUint32(b[4:], ModOff)
	put := func(off int, loc, size uint32) {
		binary.LittleEndian.PutUint32(b[off:], loc)
		binary.LittleEndian.PutUint32(b[off+4:], size)
	}
	put(0x20, 0, ti.TextSize)
	put(0x28, ti.ROOff, ti.DataOff-ti.ROOff)
	put(0x30, ti.DataOff, End-ti.DataOff)

	copy(b[ModOff:], "MOD0")
	binary.LittleEndian.PutUint32(b[ModOff+4:], DynOff-ModOff)

	strtab := []byte{0}
	off := SymtabOff
	for _, s := range ti.Syms {
		e := b[off : off+24]
		if s.Name != "" {
			binary.LittleEndian.PutUint32(e[0:], uint32(len(strtab)))
			strtab = append(append(strtab, s.Name...), 0)
		}
		e[4] = s.Info
		binary.LittleEndian.PutUint16(e[6:], s.Section)
		binary.LittleEndian.PutUint64(e[8:], s.Addr)
		binary.LittleEndian.PutUint64(e[16:], s.Size)
		off += 24
	}
	copy(b[StrtabOff:], strtab)

	dyn := [][2]uint64{{5, StrtabOff}, {10, uint64(len(strtab))}}
	if ti.ExtraTag {
		dyn = append(dyn, [2]uint64{0x1e, 8})
	}
	dyn = append(dyn, [2]uint64{6, SymtabOff}, [2]uint64{0, 0})
	off = DynOff
	for _, e := range dyn {
		binary.LittleEndian.PutUint64(b[off:], e[0])
		binary.LittleEndian.PutUint64(b[off+8:], e[1])
		off += 16
	}
	return b
}
