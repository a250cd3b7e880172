package extract

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// companionExts are the extensions of unpacked builds that may sit next to a
// module image.
var companionExts = []string{".so", ".nso", ".elf", ".dll", ".dylib"}

// Companion finds the unpacked build a module image was converted from: a
// file named after the image stem, with or without a lib prefix, in the
// image's directory or its deps/ subdirectory. The newest candidate wins.
func Companion(path string) (string, bool) {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		return "", false
	}
	var candidates []string
	for _, pre := range []string{"", "lib"} {
		for _, ext := range []string{".nso", ".so", ".elf"} {
			candidates = append(candidates, filepath.Join(dir, pre+stem+ext))
		}
	}
	for _, d := range []string{dir, filepath.Join(dir, "deps")} {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			ext := filepath.Ext(name)
			if !slices.Contains(companionExts, ext) {
				continue
			}
			fst := strings.TrimSuffix(name, ext)
			short := strings.TrimPrefix(fst, "lib")
			if strings.Contains(fst, stem) || short != "" && strings.Contains(stem, short) {
				candidates = append(candidates, filepath.Join(d, name))
			}
		}
	}
	var (
		best   string
		newest time.Time
	)
	for _, c := range candidates {
		fi, err := os.Stat(c)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if best == "" || fi.ModTime().After(newest) {
			best, newest = c, fi.ModTime()
		}
	}
	return best, best != ""
}
