package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/symbaker/nro"
	"github.com/ZenLiuCN/symbaker/pool"
)

// output files
const (
	OutputDir     = ".symbaker"
	SymbolLogName = "sym.log"
	DuplicateName = "duplicates.log"
	SidecarSuffix = ".exports.txt"
)

// Entry is what was extracted from one artifact.
type Entry struct {
	Path  string
	Rows  []nro.Symbol // full rows, module images only
	Names []string
}

// SidecarPath is the exports file written next to an artifact.
func SidecarPath(artifact string) string {
	return artifact + SidecarSuffix
}

// Sidecar renders names one per line with a trailing newline when non-empty.
func Sidecar(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "\n") + "\n"
}

// WriteSidecar writes the exports file of artifact and returns its path.
func WriteSidecar(artifact string, names []string) (string, error) {
	p := SidecarPath(artifact)
	return p, os.WriteFile(p, []byte(Sidecar(names)), 0o644)
}

// SymbolLog writes the log of a single artifact: full rows for module
// images, names otherwise.
func SymbolLog(w io.Writer, e Entry) error {
	b := bufio.NewWriter(w)
	b.WriteString("# symbaker sym.log\n")
	fmt.Fprintf(b, "# source=%s\n", e.Path)
	if len(e.Rows) > 0 {
		b.WriteString("# format: address type bind size name\n")
		for _, r := range e.Rows {
			b.WriteString(r.Line())
			b.WriteByte('\n')
		}
	} else {
		b.WriteString("# format: name\n")
		for _, n := range e.Names {
			b.WriteString(n)
			b.WriteByte('\n')
		}
	}
	return b.Flush()
}

// BatchSymbolLog writes one source block per artifact.
func BatchSymbolLog(w io.Writer, entries []Entry) error {
	b := bufio.NewWriter(w)
	b.WriteString("# symbaker sym.log\n")
	b.WriteString("# format: source=<path> then one symbol per line\n")
	for _, e := range entries {
		fmt.Fprintf(b, "\n# source=%s\n", e.Path)
		for _, n := range e.Names {
			b.WriteString(n)
			b.WriteByte('\n')
		}
	}
	return b.Flush()
}

// DuplicateLog lists every duplicated symbol followed by its owners.
func DuplicateLog(w io.Writer, dups []pool.Duplicate) error {
	b := bufio.NewWriter(w)
	b.WriteString("# symbaker duplicates.log\n")
	b.WriteString("# format: symbol followed by files exporting it\n")
	for _, d := range dups {
		fmt.Fprintf(b, "\n%s\n", d.Symbol)
		for _, o := range d.Owners {
			fmt.Fprintf(b, "  %s\n", o)
		}
	}
	return b.Flush()
}

// WriteFile creates path, and its directory, with what render writes.
func WriteFile(path string, render func(io.Writer) error) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	defer fn.IgnoreClose(f)
	if err = render(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Sync()
}
