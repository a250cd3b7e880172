package extract

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ZenLiuCN/fn"
)

var (
	ErrUnknownObject = errors.New("not an ELF, Mach-O or PE object")
)

// Native reads exported names without external tools: defined global
// dynamic symbols of ELF files (the static table when there is no dynamic
// one), external defined symbols of Mach-O files and the export directory of
// PE files.
func Native(path string) ([]string, error) {
	if f, err := elf.Open(path); err == nil {
		defer fn.IgnoreClose(f)
		return elfExports(f)
	}
	if f, err := macho.Open(path); err == nil {
		defer fn.IgnoreClose(f)
		return machoExports(f), nil
	}
	if f, err := pe.Open(path); err == nil {
		defer fn.IgnoreClose(f)
		return peExports(f)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownObject)
}

func elfExports(f *elf.File) ([]string, error) {
	dyn, err := f.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, err
	}
	if v := elfDefined(dyn); len(v) > 0 {
		return v, nil
	}
	static, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, err
	}
	return elfDefined(static), nil
}

func elfDefined(syms []elf.Symbol) (v []string) {
	for _, s := range syms {
		if s.Section == elf.SHN_UNDEF {
			continue
		}
		switch elf.ST_BIND(s.Info) {
		case elf.STB_GLOBAL, elf.STB_WEAK:
			v = append(v, s.Name)
		}
	}
	return unique(v)
}

const (
	machoExt   = 0x01 // N_EXT
	machoType  = 0x0e // N_TYPE
	machoSect  = 0x0e // N_SECT
	machoStabs = 0xe0 // N_STAB
)

func machoExports(f *macho.File) []string {
	if f.Symtab == nil {
		return nil
	}
	var v []string
	for _, s := range f.Symtab.Syms {
		if s.Type&machoStabs != 0 || s.Type&machoExt == 0 || s.Type&machoType != machoSect {
			continue
		}
		v = append(v, s.Name)
	}
	return unique(v)
}

// peExports walks IMAGE_EXPORT_DIRECTORY: NumberOfNames at +24 and
// AddressOfNames at +32, both relative to the directory.
func peExports(f *pe.File) ([]string, error) {
	var dir pe.DataDirectory
	switch h := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if h.NumberOfRvaAndSizes > pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			dir = h.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT]
		}
	case *pe.OptionalHeader64:
		if h.NumberOfRvaAndSizes > pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			dir = h.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT]
		}
	}
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, nil
	}
	cache := make(map[*pe.Section][]byte)
	// at returns the mapped bytes from rva to the end of its section.
	at := func(rva uint32) ([]byte, error) {
		for _, s := range f.Sections {
			if rva < s.VirtualAddress || rva >= s.VirtualAddress+s.VirtualSize {
				continue
			}
			data, ok := cache[s]
			if !ok {
				var err error
				if data, err = s.Data(); err != nil {
					return nil, err
				}
				cache[s] = data
			}
			off := rva - s.VirtualAddress
			if off >= uint32(len(data)) {
				break
			}
			return data[off:], nil
		}
		return nil, fmt.Errorf("rva 0x%X not mapped", rva)
	}
	hdr, err := at(dir.VirtualAddress)
	if err != nil {
		return nil, err
	}
	if len(hdr) < 40 {
		return nil, errors.New("truncated export directory")
	}
	count := binary.LittleEndian.Uint32(hdr[24:])
	table, err := at(binary.LittleEndian.Uint32(hdr[32:]))
	if err != nil {
		return nil, err
	}
	if uint64(len(table)) < uint64(count)*4 {
		return nil, errors.New("truncated export name table")
	}
	var v []string
	for i := uint32(0); i < count; i++ {
		b, err := at(binary.LittleEndian.Uint32(table[i*4:]))
		if err != nil {
			return nil, err
		}
		if n := bytes.IndexByte(b, 0); n >= 0 {
			b = b[:n]
		}
		v = append(v, string(b))
	}
	return unique(v), nil
}
