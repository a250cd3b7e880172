// Package nro decodes the exported symbol table of NRO module images.
//
// An NRO file starts with the text segment. The header inside it carries the
// "NRO0" magic and the text/ro/data segment table; the second word of the
// image is the offset of the "MOD0" descriptor, which points at the dynamic
// tag table that in turn locates .dynsym and .dynstr.
package nro

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// Ext is the file extension of module images.
	Ext = ".nro"

	headerMagicOff = 0x10
	segmentsOff    = 0x20
	modOffsetOff   = 0x04
	dynEntrySize   = 16
	symEntrySize   = 24

	DT_NULL   = 0
	DT_STRTAB = 5
	DT_SYMTAB = 6
	DT_STRSZ  = 10
)

var (
	HeaderMagic = []byte("NRO0")
	ModMagic    = []byte("MOD0")
)

var (
	ErrShort          = errors.New("short module image")
	ErrHeaderMagic    = errors.New("missing NRO0 magic")
	ErrSegmentRange   = errors.New("segment out of range")
	ErrModMagic       = errors.New("missing MOD0 magic")
	ErrDynamicRange   = errors.New("dynamic table out of range")
	ErrDynamicMissing = errors.New("dynamic table lacks strtab, strsz or symtab")
	ErrTableRange     = errors.New("symbol or string table out of range")
)

type (
	// Segment is an offset and size pair of the segment table.
	Segment struct {
		Offset uint32
		Size   uint32
	}
	// DynamicEntry is one (tag, value) pair of the dynamic table.
	DynamicEntry struct {
		Tag   uint64
		Value uint64
	}
	// Descriptor is the decoded layout of one image, built fresh by each call.
	Descriptor struct {
		Text, RO, Data Segment
		ImageSize      int    // length of the flattened image
		ModOffset      uint32 // MOD0 position inside the flattened image
		DynamicOffset  int
		Dynamic        []DynamicEntry // includes the terminating DT_NULL when present
		StrTab         int
		StrSize        int
		SymTab         int
		Count          int // symbol table entries covered by [SymTab, StrTab)
	}
)

// IsModuleImage reports whether the path carries the module image extension.
func IsModuleImage(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}

// Parse decodes the defined symbols of a module image. Any structural anomaly
// yields an empty result so callers can move on to other strategies.
func Parse(data []byte) []Symbol {
	syms, _, err := decode(data)
	if err != nil {
		return nil
	}
	return syms
}

// ParseFile reads path and parses it.
func ParseFile(path string) (v []Symbol, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	v = Parse(data)
	return
}

// Inspect decodes the image layout and reports why decoding stopped, if it did.
func Inspect(data []byte) (d Descriptor, err error) {
	_, d, err = decode(data)
	return
}

func decode(data []byte) (syms []Symbol, d Descriptor, err error) {
	if len(data) < segmentsOff+24 {
		err = ErrShort
		return
	}
	if !slices.Equal(data[headerMagicOff:headerMagicOff+4], HeaderMagic) {
		err = ErrHeaderMagic
		return
	}
	d.Text = readSegment(data, segmentsOff)
	d.RO = readSegment(data, segmentsOff+8)
	d.Data = readSegment(data, segmentsOff+16)
	var image []byte
	if image, err = flatten(data, d.Text, d.RO, d.Data); err != nil {
		return
	}
	d.ImageSize = len(image)
	mod, ok := u32(image, modOffsetOff)
	if !ok {
		err = ErrModMagic
		return
	}
	d.ModOffset = mod
	modOff := int(mod)
	if modOff+8 > len(image) || !slices.Equal(image[modOff:modOff+4], ModMagic) {
		err = fmt.Errorf("%w at 0x%X", ErrModMagic, modOff)
		return
	}
	rel, _ := u32(image, modOff+4)
	d.DynamicOffset = modOff + int(rel)
	if d.DynamicOffset >= len(image) {
		err = ErrDynamicRange
		return
	}
	var strtab, strsz, symtab uint64
	var haveStrtab, haveStrsz, haveSymtab bool
	for off := d.DynamicOffset; off+dynEntrySize <= len(image); off += dynEntrySize {
		e := DynamicEntry{
			Tag:   binary.LittleEndian.Uint64(image[off:]),
			Value: binary.LittleEndian.Uint64(image[off+8:]),
		}
		d.Dynamic = append(d.Dynamic, e)
		if e.Tag == DT_NULL {
			break
		}
		switch e.Tag {
		case DT_STRTAB:
			strtab, haveStrtab = e.Value, true
		case DT_STRSZ:
			strsz, haveStrsz = e.Value, true
		case DT_SYMTAB:
			symtab, haveSymtab = e.Value, true
		}
	}
	if !haveStrtab || !haveStrsz || !haveSymtab {
		err = ErrDynamicMissing
		return
	}
	size := uint64(len(image))
	if strsz == 0 || strtab >= size || symtab >= size || symtab >= strtab {
		err = ErrTableRange
		return
	}
	d.StrTab, d.StrSize, d.SymTab = int(strtab), int(strsz), int(symtab)
	strEnd := min(d.StrTab+d.StrSize, len(image))
	d.Count = (d.StrTab - d.SymTab) / symEntrySize
	for i := 0; i < d.Count; i++ {
		base := d.SymTab + i*symEntrySize
		if base+symEntrySize > len(image) {
			break
		}
		e := image[base : base+symEntrySize]
		nameIdx := binary.LittleEndian.Uint32(e[0:])
		shndx := binary.LittleEndian.Uint16(e[6:])
		if nameIdx == 0 || shndx == 0 {
			continue
		}
		name := cstring(image, d.StrTab+int(nameIdx), strEnd)
		if name == "" || !utf8.ValidString(name) {
			continue
		}
		info := e[4]
		syms = append(syms, Symbol{
			Name:    name,
			Address: binary.LittleEndian.Uint64(e[8:]),
			Type:    SymType(info & 0x0f),
			Bind:    SymBind(info >> 4),
			Size:    binary.LittleEndian.Uint64(e[16:]),
			Section: shndx,
		})
	}
	slices.SortStableFunc(syms, func(a, b Symbol) int {
		switch {
		case a.Address != b.Address:
			if a.Address < b.Address {
				return -1
			}
			return 1
		case a.Name != b.Name:
			return strings.Compare(a.Name, b.Name)
		default:
			return int(a.Section) - int(b.Section)
		}
	})
	return
}

// flatten rebuilds the virtual image the descriptor offsets refer to. Segments
// are laid down in text, ro, data order at their declared offsets: a gap is
// zero filled and an overlap truncates the previous segment. This mirrors the
// layout of the one known producer; images with another segment order are not
// supported.
func flatten(data []byte, segs ...Segment) (image []byte, err error) {
	for _, s := range segs {
		end := uint64(s.Offset) + uint64(s.Size)
		if end > uint64(len(data)) {
			err = fmt.Errorf("%w: 0x%X+0x%X", ErrSegmentRange, s.Offset, s.Size)
			return
		}
	}
	for i, s := range segs {
		if i > 0 {
			at := int(s.Offset)
			if at > len(image) {
				image = append(image, make([]byte, at-len(image))...)
			} else {
				image = image[:at]
			}
		}
		image = append(image, data[s.Offset:s.Offset+s.Size]...)
	}
	return
}

func readSegment(data []byte, off int) Segment {
	return Segment{
		Offset: binary.LittleEndian.Uint32(data[off:]),
		Size:   binary.LittleEndian.Uint32(data[off+4:]),
	}
}

func u32(b []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[off:]), true
}

// cstring reads a NUL terminated string starting at off, never past end.
func cstring(b []byte, off, end int) string {
	if off >= end || off >= len(b) {
		return ""
	}
	end = min(end, len(b))
	i := off
	for i < end && b[i] != 0 {
		i++
	}
	return string(b[off:i])
}
