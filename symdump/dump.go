package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZenLiuCN/symbaker/extract"
	"github.com/ZenLiuCN/symbaker/nro"
	"github.com/ZenLiuCN/symbaker/pool"
	"github.com/ZenLiuCN/symbaker/report"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var dumpCommand = &cli.Command{
	Name:   "dump",
	Action: dump,
	Usage:  "write exports sidecars, sym.log and duplicates.log for artifacts or folders of .nro files",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "profile", Usage: "only collect .nro files below a directory of this name"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory, .symbaker in the workspace root by default"},
		&cli.StringFlag{Name: "manifest-path", Usage: "manifest locating the workspace root"},
		&cli.StringFlag{Name: "pkg", Aliases: []string{"p"}, Usage: "package path of go objects, default main"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Value: 1, Usage: "artifacts extracted in parallel, 0 for no limit"},
	},
	Args:      true,
	ArgsUsage: "<file.nro|folder> [more paths...]",
}

func dump(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing artifacts or folders to dump")
	}
	var files []string
	if files, err = extract.Collect(ctx.Args().Slice(), ctx.String("profile")); err != nil {
		return
	}
	out := ctx.String("out")
	if out == "" {
		var root string
		if root, err = workspaceRoot(ctx.String("manifest-path")); err != nil {
			return
		}
		out = filepath.Join(root, report.OutputDir)
	}
	return runDump(ctx.Context, newExtractor(ctx), files, out, ctx.Int("jobs"), ctx.App.Writer)
}

// runDump extracts files, writes their sidecars and the logs under out.
func runDump(ctx context.Context, ex *extract.Extractor, files []string, out string, jobs int, w io.Writer) (err error) {
	var results []extract.Result
	if results, err = ex.ExtractAll(ctx, files, jobs); err != nil {
		return
	}
	logger.Debug("extracted", zap.String("results", spew.Sdump(results)))
	entries := make([]report.Entry, 0, len(results))
	exports := make([]pool.Exports, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		var sidecar string
		if sidecar, err = report.WriteSidecar(r.Path, r.Symbols); err != nil {
			return
		}
		e := report.Entry{Path: r.Path, Names: r.Symbols}
		if nro.IsModuleImage(r.Path) {
			e.Rows, _ = nro.ParseFile(r.Path)
		}
		entries = append(entries, e)
		exports = append(exports, pool.Exports{Path: r.Path, Symbols: r.Symbols})
		fmt.Fprintf(w, "artifact: %s (%s, %d symbols)\n", r.Path, size(r.Path), len(r.Symbols))
		fmt.Fprintf(w, "exports: %s\n", sidecar)
	}

	symLog := filepath.Join(out, report.SymbolLogName)
	if len(entries) == 1 {
		err = report.WriteFile(symLog, func(w io.Writer) error { return report.SymbolLog(w, entries[0]) })
	} else {
		err = report.WriteFile(symLog, func(w io.Writer) error { return report.BatchSymbolLog(w, entries) })
	}
	if err != nil {
		return
	}
	fmt.Fprintf(w, "sym.log: %s\n", symLog)

	dups := pool.FindDuplicates(exports)
	if len(dups) == 0 {
		fmt.Fprintf(w, "duplicate symbols: none (checked %d artifact(s))\n", len(entries))
		return
	}
	dupLog := filepath.Join(out, report.DuplicateName)
	if err = report.WriteFile(dupLog, func(w io.Writer) error { return report.DuplicateLog(w, dups) }); err != nil {
		return
	}
	fmt.Fprintf(w, "duplicates: %s\n", dupLog)
	fmt.Fprintf(w, "found %d duplicated symbol(s) across %d artifact(s)\n", len(dups), len(entries))
	return
}

func size(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(fi.Size()))
}
