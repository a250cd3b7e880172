// Package report turns trace files and extraction results into the files
// symdump writes: sidecars, symbol logs, duplicate logs and the resolution
// report.
package report

import (
	"bufio"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/symbaker"
)

// PackageTrace is what the trace recorded about one package.
type PackageTrace struct {
	Name        string
	ManifestDir string
	Source      string
	Raw         string
	Prefix      string
	Separator   string
	Enforcement string // rejected or warned, empty when the policy passed
	Symbols     []string
}

// Line is one parsed trace line.
type Line struct {
	Package string
	Words   []string          // bare words, the event first
	Fields  map[string]string // key=value pairs, quoted values unquoted
}

// ParseLine splits a trace line. ok is false for lines without the trace tag.
func ParseLine(s string) (l Line, ok bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), symbaker.TraceTag+" pkg=")
	if !ok {
		return
	}
	end := strings.Index(rest, "] ")
	if end < 0 {
		ok = false
		return
	}
	l.Package, rest = rest[:end], rest[end+2:]
	l.Fields = make(map[string]string)
	for {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			return
		}
		eq := strings.IndexByte(rest, '=')
		sp := strings.IndexByte(rest, ' ')
		if eq < 0 || sp >= 0 && sp < eq {
			if sp < 0 {
				sp = len(rest)
			}
			l.Words = append(l.Words, rest[:sp])
			rest = rest[sp:]
			continue
		}
		key := rest[:eq]
		rest = rest[eq+1:]
		if strings.HasPrefix(rest, `"`) {
			if q, err := strconv.QuotedPrefix(rest); err == nil {
				l.Fields[key], _ = strconv.Unquote(q)
				rest = rest[len(q):]
				continue
			}
		}
		sp = strings.IndexByte(rest, ' ')
		if sp < 0 {
			sp = len(rest)
		}
		l.Fields[key] = rest[:sp]
		rest = rest[sp:]
	}
}

func (l Line) event() string {
	if len(l.Words) == 0 {
		return ""
	}
	return l.Words[0]
}

// ParseTrace groups trace lines by their package tag. Lines of concurrent
// builds may interleave freely.
func ParseTrace(r io.Reader) (map[string]*PackageTrace, error) {
	out := make(map[string]*PackageTrace)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		l, ok := ParseLine(sc.Text())
		if !ok || l.Package == "" {
			continue
		}
		t, ok := out[l.Package]
		if !ok {
			t = &PackageTrace{Name: l.Package}
			out[l.Package] = t
		}
		switch {
		case l.event() == "env":
			if v, ok := l.Fields[symbaker.EnvManifestDir]; ok && v != "<unset>" {
				t.ManifestDir = v
			}
		case l.event() == "selected":
			if _, known := symbaker.ParseSource(l.Fields["source"]); known {
				t.Source = l.Fields["source"]
			}
			t.Raw = l.Fields["raw"]
			t.Prefix = l.Fields["sanitized"]
			t.Separator = l.Fields["sep"]
		case l.event() == "enforce" && len(l.Words) > 1:
			t.Enforcement = l.Words[1]
		default:
			if v, ok := l.Fields["export_name"]; ok && !slices.Contains(t.Symbols, v) {
				t.Symbols = append(t.Symbols, v)
			}
		}
	}
	return out, sc.Err()
}

// ReadTrace parses the trace file at path.
func ReadTrace(path string) (map[string]*PackageTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fn.IgnoreClose(f)
	return ParseTrace(f)
}
