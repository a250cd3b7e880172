package nro

import (
	"fmt"
)

type (
	// SymType is the low nibble of a symbol's info byte.
	SymType uint8
	// SymBind is the high nibble of a symbol's info byte.
	SymBind uint8
	// Symbol is one defined entry of the dynamic symbol table.
	Symbol struct {
		Name    string
		Address uint64
		Type    SymType
		Bind    SymBind
		Size    uint64
		Section uint16
	}
)

const (
	TypeNoType SymType = iota
	TypeObject
	TypeFunc
	TypeSection
	TypeFile
	TypeCommon
	TypeTLS
	TypeUnknown
)

const (
	BindLocal SymBind = iota
	BindGlobal
	BindWeak
	BindUnknown
)

func (t SymType) String() string {
	switch t {
	case TypeNoType:
		return "NOTYPE"
	case TypeObject:
		return "OBJECT"
	case TypeFunc:
		return "FUNC"
	case TypeSection:
		return "SECTION"
	case TypeFile:
		return "FILE"
	case TypeCommon:
		return "COMMON"
	case TypeTLS:
		return "TLS"
	default:
		return "UNKNOWN"
	}
}

func (b SymBind) String() string {
	switch b {
	case BindLocal:
		return "LOCAL"
	case BindGlobal:
		return "GLOBAL"
	case BindWeak:
		return "WEAK"
	default:
		return "UNKNOWN"
	}
}

// Line renders the symbol as one sym.log row.
func (s Symbol) Line() string {
	return fmt.Sprintf("0x%016X %s %s 0x%X %s", s.Address, s.Type, s.Bind, s.Size, s.Name)
}

// Names of symbols, de-duplicated, in order of first appearance.
func Names(syms []Symbol) (v []string) {
	seen := make(map[string]struct{}, len(syms))
	for _, s := range syms {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		v = append(v, s.Name)
	}
	return
}
