package symbaker

import (
	"fmt"
)

type (
	// Renamer makes the compiled output export old under new. How it does so
	// is up to the toolchain.
	Renamer interface {
		Rename(old, new string) error
	}
	// RenamerFunc adapts a function to Renamer.
	RenamerFunc func(old, new string) error
	// Export is one rename handed to the Renamer.
	Export struct {
		Module string
		Name   string
		Export string
	}
)

func (f RenamerFunc) Rename(old, new string) error {
	return f(old, new)
}

// Apply renames the functions of module selected by rules. module may be
// empty for free functions, in which case rules are not consulted.
func Apply(rn Renamer, pkg string, rp ResolvedPrefix, module string, names []string, rules ModuleRules, tc *TraceContext) (out []Export, err error) {
	for _, name := range names {
		var export string
		if module == "" {
			export = rp.ExportName(name)
		} else {
			if !rules.ShouldPrefix(module, name) {
				continue
			}
			export = rules.RenderExportName(rp, module, name)
		}
		if err = rn.Rename(name, export); err != nil {
			err = fmt.Errorf("rename %s to %s: %w", name, export, err)
			return
		}
		tc.Printf(pkg, "export_name=%s fn=%s", quote(export), quote(name))
		out = append(out, Export{Module: module, Name: name, Export: export})
	}
	return
}
