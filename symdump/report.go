package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZenLiuCN/symbaker"
	"github.com/ZenLiuCN/symbaker/report"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// TraceName is the default trace file inside the output directory.
const TraceName = "trace.log"

var reportCommand = &cli.Command{
	Name:   "report",
	Action: writeReport,
	Usage:  "summarize a build trace into .symbaker/resolution.yaml",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "trace-file", Usage: "trace to read, SYMBAKER_TRACE_FILE or .symbaker/trace.log by default"},
		&cli.StringFlag{Name: "manifest-path", Usage: "manifest locating the workspace and passed to cargo metadata"},
		&cli.BoolFlag{Name: "no-metadata", Usage: "skip the dependency graph"},
	},
}

func writeReport(ctx *cli.Context) (err error) {
	var root string
	if root, err = workspaceRoot(ctx.String("manifest-path")); err != nil {
		return
	}
	out := filepath.Join(root, report.OutputDir)
	trace := ctx.String("trace-file")
	if trace == "" {
		var ok bool
		if trace, ok = symbaker.NonBlank(env, symbaker.EnvTraceFile); !ok {
			trace = filepath.Join(out, TraceName)
		}
	}
	if _, err = os.Stat(trace); err != nil {
		return fmt.Errorf("trace file missing: %w", err)
	}
	var traces map[string]*report.PackageTrace
	if traces, err = report.ReadTrace(trace); err != nil {
		return
	}
	opt := report.Options{TraceFile: trace}
	opt.TopPackage, _ = symbaker.NonBlank(env, symbaker.EnvTopPackage)
	opt.Config, _ = symbaker.NonBlank(withDiscoveredConfig(env), symbaker.EnvConfig)
	if !ctx.Bool("no-metadata") {
		q := symbaker.CargoMetadata{ManifestPath: ctx.String("manifest-path")}
		if doc, err := q.Metadata(ctx.Context); err != nil {
			logger.Warn("dependency graph unavailable", zap.Error(err))
		} else {
			opt.Graph = symbaker.DependencyGraph(doc)
			if opt.TopPackage == "" {
				opt.TopPackage, _ = symbaker.RootPackage(doc)
			}
		}
	}
	r := report.Build(traces, opt)
	p := filepath.Join(out, report.ReportName)
	if err = r.Write(p); err != nil {
		return
	}
	fmt.Fprintf(ctx.App.Writer, "resolution: %s (%d packages, build %s)\n", p, len(r.Packages), r.BuildID)
	return
}
