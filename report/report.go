package report

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ZenLiuCN/fn"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ReportName is the resolution report file inside the output directory.
const ReportName = "resolution.yaml"

type (
	// Report summarizes the prefix decisions of one build.
	Report struct {
		BuildID     string            `yaml:"build_id"`
		GeneratedAt time.Time         `yaml:"generated_at"`
		TopPackage  string            `yaml:"top_package,omitempty"`
		Config      string            `yaml:"config,omitempty"`
		TraceFile   string            `yaml:"trace_file"`
		Packages    []Package         `yaml:"packages"`
		Overrides   map[string]string `yaml:"overrides_template,omitempty"` // ready to paste into [overrides]
	}
	Package struct {
		Name         string   `yaml:"name"`
		ManifestDir  string   `yaml:"manifest_dir,omitempty"`
		Source       string   `yaml:"selected_source,omitempty"`
		Raw          string   `yaml:"raw_prefix,omitempty"`
		Prefix       string   `yaml:"resolved_prefix,omitempty"`
		Separator    string   `yaml:"separator,omitempty"`
		Enforcement  string   `yaml:"enforcement,omitempty"`
		Dependencies []string `yaml:"dependencies,omitempty"`
		Symbols      []string `yaml:"symbols,omitempty"`
	}
	// Options carry the build context that is not in the trace.
	Options struct {
		BuildID    string // generated when empty
		Now        time.Time
		TopPackage string
		Config     string
		TraceFile  string
		Graph      map[string][]string // package name to dependency names
	}
)

// Build joins the per package traces with the dependency graph. Packages
// and their symbols are sorted by name.
func Build(traces map[string]*PackageTrace, opt Options) *Report {
	r := &Report{
		BuildID:     opt.BuildID,
		GeneratedAt: opt.Now.UTC(),
		TopPackage:  opt.TopPackage,
		Config:      opt.Config,
		TraceFile:   opt.TraceFile,
		Overrides:   make(map[string]string),
	}
	if r.BuildID == "" {
		r.BuildID = uuid.NewString()
	}
	if opt.Now.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	names := fn.MapKeys(traces)
	slices.Sort(names)
	for _, name := range names {
		t := traces[name]
		syms := slices.Clone(t.Symbols)
		slices.Sort(syms)
		r.Packages = append(r.Packages, Package{
			Name:         name,
			ManifestDir:  t.ManifestDir,
			Source:       t.Source,
			Raw:          t.Raw,
			Prefix:       t.Prefix,
			Separator:    t.Separator,
			Enforcement:  t.Enforcement,
			Dependencies: opt.Graph[name],
			Symbols:      syms,
		})
		if t.Prefix != "" {
			r.Overrides[name] = t.Prefix
		}
	}
	return r
}

// Write stores the report as YAML, creating the parent directory.
func (r *Report) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fn.IgnoreClose(f)
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err = enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// ReadReport loads a report written by Write.
func ReadReport(path string) (r *Report, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	r = new(Report)
	err = yaml.Unmarshal(data, r)
	return
}
