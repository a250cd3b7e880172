package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZenLiuCN/symbaker"
	"github.com/urfave/cli/v2"
)

var resolveCommand = &cli.Command{
	Name:   "resolve",
	Action: resolve,
	Usage:  "resolve the export prefix of a package and print the export names of the given functions",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "package", Aliases: []string{"k"}, Usage: "package name, CARGO_PKG_NAME by default"},
		&cli.StringFlag{Name: "manifest-dir", Usage: "package directory, CARGO_MANIFEST_DIR by default"},
		&cli.StringFlag{Name: "attr", Usage: "prefix given at the annotation site"},
		&cli.StringFlag{Name: "module", Aliases: []string{"m"}, Usage: "module the functions belong to, enables --rule"},
		&cli.StringSliceFlag{Name: "rule", Aliases: []string{"r"}, Usage: "module rule as key=value, e.g. include_regex=^keep_"},
		&cli.BoolFlag{Name: "metadata", Usage: "ask cargo metadata for the top level package as a last resort"},
		&cli.StringFlag{Name: "manifest-path", Usage: "manifest passed to cargo metadata"},
	},
	Args:      true,
	ArgsUsage: "[function names...]",
}

func resolve(ctx *cli.Context) (err error) {
	e := withDiscoveredConfig(env)
	tc := symbaker.TraceFromEnv(e, logger)
	var query symbaker.MetadataQuery
	if ctx.Bool("metadata") {
		query = symbaker.CargoMetadata{ManifestPath: ctx.String("manifest-path"), NoDeps: true}
	}
	req := symbaker.Request{
		Package:     ctx.String("package"),
		ManifestDir: ctx.String("manifest-dir"),
	}
	if ctx.IsSet("attr") {
		req.Attribute, req.HasAttribute = ctx.String("attr"), true
	}
	var rules symbaker.ModuleRules
	if rules, err = parseRules(ctx.StringSlice("rule")); err != nil {
		return
	}
	return runResolve(symbaker.NewResolver(e, tc, query), req, ctx.String("module"), ctx.Args().Slice(), rules, ctx.App.Writer)
}

func parseRules(specs []string) (symbaker.ModuleRules, error) {
	args := make(map[string]string, len(specs))
	for _, s := range specs {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return symbaker.ModuleRules{}, fmt.Errorf("rule %q is not key=value", s)
		}
		args[strings.TrimSpace(k)] = v
	}
	return symbaker.ParseModuleRules(args)
}

func runResolve(r *symbaker.Resolver, req symbaker.Request, module string, names []string, rules symbaker.ModuleRules, w io.Writer) (err error) {
	var rp symbaker.ResolvedPrefix
	if rp, err = r.Resolve(req); err != nil {
		return
	}
	pkg := symbaker.NewSources(req, r.Env, r.Config, nil).PackageName()
	fmt.Fprintf(w, "package=%s prefix=%s sep=%s source=%s\n", pkg, rp.Prefix, rp.Separator, rp.Source)
	_, err = symbaker.Apply(symbaker.RenamerFunc(func(old, new string) error {
		_, err := fmt.Fprintf(w, "%s -> %s\n", old, new)
		return err
	}), pkg, rp, module, names, rules, r.Trace)
	return
}
