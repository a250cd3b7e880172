// Package extract recovers the exported symbol names of compiled artifacts.
//
// Module images are decoded in process; everything else goes through a chain
// of external tools and in-process readers where the first strategy with a
// non-empty answer wins.
package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZenLiuCN/symbaker/nro"
)

// Format is the kind of artifact, inferred from its extension.
type Format int

const (
	FormatModuleImage Format = iota
	FormatGoObject
	FormatDynamicLibrary
)

func (f Format) String() string {
	switch f {
	case FormatModuleImage:
		return "module-image"
	case FormatGoObject:
		return "go-object"
	default:
		return "dynamic-library"
	}
}

// Artifact is a compiled output handed to the extractor.
type Artifact struct {
	Path   string
	Format Format
}

func NewArtifact(path string) Artifact {
	return Artifact{Path: path, Format: FormatOf(path)}
}

// FormatOf infers the format from the extension of path. Anything that is
// neither a module image nor a Go object is treated as a dynamic library.
func FormatOf(path string) Format {
	if nro.IsModuleImage(path) {
		return FormatModuleImage
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".o", ".a":
		return FormatGoObject
	}
	return FormatDynamicLibrary
}

// Collect expands inputs into artifact paths. Files are taken as given;
// directories are walked for module images, keeping only paths that contain
// a profile segment when profile is set. The result is sorted and unique.
func Collect(inputs []string, profile string) (out []string, err error) {
	for _, in := range inputs {
		var fi fs.FileInfo
		if fi, err = os.Stat(in); err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, in)
			continue
		}
		var found []string
		err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !nro.IsModuleImage(p) {
				return nil
			}
			if profile != "" && !slices.Contains(strings.Split(filepath.ToSlash(p), "/"), profile) {
				return nil
			}
			found = append(found, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", in, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no %s files found under %s", nro.Ext, in)
		}
		out = append(out, found...)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	return
}
