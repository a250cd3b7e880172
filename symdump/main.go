package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ZenLiuCN/symbaker"
	"github.com/ZenLiuCN/symbaker/extract"
	"github.com/ZenLiuCN/symbaker/extract/goobj"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger          = zap.NewNop()
	env    symbaker.Environment = symbaker.OSEnv{}
)

func main() {
	app := cli.NewApp()
	app.Usage = "symbol prefix resolver and export dumper"
	app.Name = "symdump"
	app.Description = "symdump resolves the export prefix of packages, checks workspace setup and dumps the exported symbols of built plugins"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
		},
		&cli.StringSliceFlag{
			Name:    "env-file",
			Aliases: []string{"e"},
			Usage:   "dotenv files consulted after the process environment, .env when present",
		},
		&cli.DurationFlag{
			Name:  "tool-timeout",
			Usage: "kill nm and objdump runs taking longer, 0 waits for them",
		},
	}
	app.Before = setup
	app.After = func(*cli.Context) error {
		_ = logger.Sync()
		return nil
	}
	app.Commands = []*cli.Command{
		dumpCommand,
		resolveCommand,
		{
			Name:   "check",
			Action: check,
			Usage:  "verify the workspace was initialized for deterministic prefixes",
		},
		initCommand,
		reportCommand,
		inspectCommand,
		{
			Name:   "prepare",
			Action: prepare,
			Usage:  "copy internals of go sdk, needed to inspect go objects",
		},
		{
			Name:   "clean",
			Action: clean,
			Usage:  "remove copied internals of go sdk",
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("failure %s", err)
	}
}

func setup(ctx *cli.Context) (err error) {
	config := zap.NewProductionConfig()
	if ctx.Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logger, err = config.Build(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	files := ctx.StringSlice("env-file")
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	env = symbaker.OSEnv{}
	if len(files) > 0 {
		var m symbaker.MapEnv
		if m, err = symbaker.ReadEnvFiles(files...); err != nil {
			return fmt.Errorf("read env files: %w", err)
		}
		env = symbaker.Layer(symbaker.OSEnv{}, m)
		logger.Debug("env files loaded", zap.Strings("files", files))
	}
	return nil
}

// withDiscoveredConfig adds SYMBAKER_CONFIG when a config file is found
// above the working directory and none is configured.
func withDiscoveredConfig(e symbaker.Environment) symbaker.Environment {
	if _, ok := symbaker.NonBlank(e, symbaker.EnvConfig); ok {
		return e
	}
	wd, err := os.Getwd()
	if err != nil {
		return e
	}
	if p, ok := symbaker.DiscoverConfig(wd); ok {
		logger.Debug("config discovered", zap.String("path", p))
		return symbaker.Layer(e, symbaker.MapEnv{symbaker.EnvConfig: p})
	}
	return e
}

// workspaceRoot is the directory of manifest when given, else the nearest
// directory above the working directory holding one.
func workspaceRoot(manifest string) (string, error) {
	if manifest != "" {
		abs, err := filepath.Abs(manifest)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, ok := symbaker.FindPackageRoot(wd); ok {
		return root, nil
	}
	return "", fmt.Errorf("could not find %s in %s or its parents", symbaker.ManifestName, wd)
}

func newExtractor(ctx *cli.Context) *extract.Extractor {
	ex := extract.NewExtractor(extract.ExecRunner{Timeout: ctx.Duration("tool-timeout")}, logger)
	ex.Objects = goobj.Inspector{PkgPath: ctx.String("pkg")}
	return ex
}

func check(ctx *cli.Context) error {
	if err := symbaker.CheckInitialized(env); err != nil {
		return err
	}
	_, err := fmt.Fprintln(ctx.App.Writer, "symbaker initialized")
	return err
}
