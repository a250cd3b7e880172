package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZenLiuCN/symbaker"
	"github.com/ZenLiuCN/symbaker/report"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"
)

var initCommand = &cli.Command{
	Name:   "init",
	Action: initialize,
	Usage:  "write symbaker.toml and the cargo [env] entries that make builds deterministic",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "prefix", Usage: "prefix written to symbaker.toml"},
		&cli.BoolFlag{Name: "force", Usage: "overwrite an existing symbaker.toml"},
		&cli.StringFlag{Name: "manifest-path", Usage: "manifest locating the workspace root"},
	},
}

func initialize(ctx *cli.Context) error {
	root, err := workspaceRoot(ctx.String("manifest-path"))
	if err != nil {
		return err
	}
	return initWorkspace(root, ctx.String("prefix"), ctx.Bool("force"), ctx.App.Writer)
}

// configTemplate is the symbaker.toml written by init.
func configTemplate(prefix string) string {
	b := strings.Builder{}
	if prefix != "" {
		fmt.Fprintf(&b, "prefix = %q\n", prefix)
	} else {
		b.WriteString("# prefix = \"hdr\"\n")
	}
	fmt.Fprintf(&b, "sep = %q\n", symbaker.DefaultSep)
	b.WriteString("priority = [")
	for i, k := range symbaker.DefaultPriority() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", k)
	}
	b.WriteString("]\n\n[overrides]\n# ssbusync = \"hdr\"\n")
	return b.String()
}

func initWorkspace(root, prefix string, force bool, w io.Writer) (err error) {
	cfgPath := filepath.Join(root, symbaker.ConfigName)
	if _, statErr := os.Stat(cfgPath); statErr != nil || force {
		if err = os.WriteFile(cfgPath, []byte(configTemplate(prefix)), 0o644); err != nil {
			return
		}
		fmt.Fprintf(w, "wrote %s\n", cfgPath)
	} else {
		fmt.Fprintf(w, "kept existing %s\n", cfgPath)
	}

	outDir := filepath.Join(root, report.OutputDir)
	if err = os.MkdirAll(outDir, 0o755); err != nil {
		return
	}
	cargoDir := filepath.Join(root, ".cargo")
	if err = os.MkdirAll(cargoDir, 0o755); err != nil {
		return
	}
	cargoCfg := filepath.Join(cargoDir, "config.toml")
	doc := map[string]any{}
	if data, readErr := os.ReadFile(cargoCfg); readErr == nil {
		if toml.Unmarshal(data, &doc) != nil {
			doc = map[string]any{}
		}
	}
	envTbl, ok := doc["env"].(map[string]any)
	if !ok {
		if _, exists := doc["env"]; exists {
			return fmt.Errorf("%s has non-table [env]", cargoCfg)
		}
		envTbl = map[string]any{}
		doc["env"] = envTbl
	}
	for _, kv := range [][2]string{
		{symbaker.EnvConfig, cfgPath},
		{symbaker.EnvRequireConfig, "1"},
		{symbaker.EnvEnforceInherit, "1"},
		{symbaker.EnvInitialized, "1"},
	} {
		if existing, ok := envTbl[kv[0]]; ok {
			fmt.Fprintf(w, "kept existing [env].%s in %s: %v\n", kv[0], cargoCfg, existing)
			continue
		}
		envTbl[kv[0]] = kv[1]
		fmt.Fprintf(w, "added [env].%s to %s\n", kv[0], cargoCfg)
	}
	var data []byte
	if data, err = toml.Marshal(doc); err != nil {
		return fmt.Errorf("encode %s: %w", cargoCfg, err)
	}
	if err = os.WriteFile(cargoCfg, data, 0o644); err != nil {
		return
	}
	fmt.Fprintf(w, "updated %s\n", cargoCfg)
	fmt.Fprintf(w, "output dir: %s\n", outDir)
	fmt.Fprintln(w, "symbaker init complete")
	return
}
