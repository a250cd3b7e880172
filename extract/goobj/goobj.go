// Package goobj lists symbols of Go object files and archives with goloader.
package goobj

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/pkujhd/goloader"
	"github.com/pkujhd/goloader/obj"
)

// DefaultPkgPath is assumed when an object is inspected without a package path.
const DefaultPkgPath = "main"

type (
	// Inspector reads compiled Go objects (.o) and archives (.a).
	Inspector struct {
		PkgPath string
	}
	// Imports of one object: import path to module version, empty for
	// standard library or unversioned packages.
	Imports struct {
		File    string
		PkgPath string
		Imports map[string]string
	}
)

func (i Inspector) pkg() string {
	if i.PkgPath == "" {
		return DefaultPkgPath
	}
	return i.PkgPath
}

// Symbols returns the symbol names defined by the object at path.
func (i Inspector) Symbols(path string) ([]string, error) {
	syms, err := goloader.Parse(path, i.pkg())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return syms, nil
}

// Imports resolves the packages the object imports, with their module
// version when the compilation units reveal one.
func (i Inspector) Imports(path string) (v *Imports, err error) {
	p := &obj.Pkg{Syms: make(map[string]*obj.ObjSymbol), File: path, PkgPath: i.pkg()}
	if err = p.Symbols(); err != nil {
		err = fmt.Errorf("read %s: %w", path, err)
		return
	}
	v = &Imports{File: path, PkgPath: p.PkgPath, Imports: versions(p.ImportPkgs, p.CUFiles)}
	return
}

// Sorted returns the import lines as path or path@version, sorted.
func (m *Imports) Sorted() []string {
	keys := fn.MapKeys(m.Imports)
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if ver := m.Imports[k]; ver != "" {
			out = append(out, k+"@"+ver)
		} else {
			out = append(out, k)
		}
	}
	return out
}

// versions matches each compilation unit path of the form
// .../pkg/mod/<import path>@<version>/file.go against the imports.
func versions(imports, units []string) map[string]string {
	m := make(map[string]string, len(imports))
	for _, p := range imports {
		m[p] = ""
	}
	for _, f := range units {
		f = strings.TrimPrefix(f, "gofile..")
		if strings.HasPrefix(f, "$GOROOT") {
			continue
		}
		if strings.IndexByte(f, '!') >= 0 {
			f = unescape(f)
		}
		for _, p := range imports {
			x := strings.Index(f, p+"@")
			if x < 0 || m[p] != "" {
				continue
			}
			ver := f[x+len(p)+1:]
			if y := strings.IndexByte(ver, '/'); y >= 0 {
				ver = ver[:y]
			}
			m[p] = ver
		}
	}
	return m
}

// unescape reverses the module cache case encoding, where !x stands for X.
func unescape(f string) string {
	v := strings.Builder{}
	upper := false
	for _, c := range []byte(f) {
		switch {
		case c == '!':
			upper = true
		case upper:
			upper = false
			v.WriteByte(c - 32)
		default:
			v.WriteByte(c)
		}
	}
	return v.String()
}
