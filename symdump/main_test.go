package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/symbaker"
	"github.com/ZenLiuCN/symbaker/extract"
	"github.com/ZenLiuCN/symbaker/nro/nrotest"
	"github.com/ZenLiuCN/symbaker/report"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noTools struct{}

func (noTools) Available(context.Context, string) bool { return false }
func (noTools) Run(context.Context, string, ...string) ([]byte, error) {
	return nil, os.ErrNotExist
}

func write(t *testing.T, p string, data []byte) string {
	t.Helper()
	fn.Panic(os.MkdirAll(filepath.Dir(p), 0o755))
	fn.Panic(os.WriteFile(p, data, 0o644))
	return p
}

func image(names ...string) []byte {
	var syms []nrotest.Sym
	for i, n := range names {
		syms = append(syms, nrotest.Sym{Name: n, Addr: uint64(0x1000 + i*0x10), Info: 0x12, Size: 4, Section: 1})
	}
	return nrotest.Default(syms...).Build()
}

func TestRunDumpBatch(t *testing.T) {
	dir := t.TempDir()
	a := write(t, filepath.Join(dir, "target", "a.nro"), image("s1", "s2"))
	b := write(t, filepath.Join(dir, "target", "b.nro"), image("s2"))
	c := write(t, filepath.Join(dir, "target", "c.nro"), image("s1", "s3"))
	files := fn.Panic1(extract.Collect([]string{filepath.Join(dir, "target")}, ""))
	require.Equal(t, []string{a, b, c}, files)

	out := filepath.Join(dir, report.OutputDir)
	var w bytes.Buffer
	require.NoError(t, runDump(context.Background(), &extract.Extractor{Runner: noTools{}, NoNative: true}, files, out, 2, &w))

	assert.Equal(t, "s1\ns2\n", string(fn.Panic1(os.ReadFile(a+".exports.txt"))))
	symLog := string(fn.Panic1(os.ReadFile(filepath.Join(out, report.SymbolLogName))))
	assert.True(t, strings.HasPrefix(symLog, "# symbaker sym.log\n# format: source=<path> then one symbol per line\n"))
	assert.Contains(t, symLog, "\n# source="+b+"\ns2\n")
	dups := string(fn.Panic1(os.ReadFile(filepath.Join(out, report.DuplicateName))))
	assert.Contains(t, dups, "\ns1\n  "+a+"\n  "+c+"\n")
	assert.Contains(t, dups, "\ns2\n  "+a+"\n  "+b+"\n")
	assert.Contains(t, w.String(), "found 2 duplicated symbol(s) across 3 artifact(s)")
}

func TestRunDumpSingle(t *testing.T) {
	dir := t.TempDir()
	a := write(t, filepath.Join(dir, "plugin.nro"), image("alpha"))
	out := filepath.Join(dir, "out")
	var w bytes.Buffer
	require.NoError(t, runDump(context.Background(), &extract.Extractor{Runner: noTools{}, NoNative: true}, []string{a}, out, 1, &w))
	symLog := string(fn.Panic1(os.ReadFile(filepath.Join(out, report.SymbolLogName))))
	assert.Contains(t, symLog, "# format: address type bind size name\n0x0000000000001000 FUNC GLOBAL 0x4 alpha\n")
	assert.Contains(t, w.String(), "duplicate symbols: none (checked 1 artifact(s))")
	assert.NoFileExists(t, filepath.Join(out, report.DuplicateName))
}

func TestRunDumpFailure(t *testing.T) {
	dir := t.TempDir()
	bad := write(t, filepath.Join(dir, "bad.nro"), []byte("garbage"))
	err := runDump(context.Background(), &extract.Extractor{Runner: noTools{}, NoNative: true}, []string{bad}, dir, 1, &bytes.Buffer{})
	var failed *extract.ExtractionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, bad, failed.Path)
}

func TestInitWorkspace(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ".cargo", "config.toml"), []byte("[build]\ntarget = \"aarch64\"\n\n[env]\nSYMBAKER_ENFORCE_INHERIT = \"0\"\n"))
	var w bytes.Buffer
	require.NoError(t, initWorkspace(root, "hdr", false, &w))

	cfg, err := symbaker.ReadConfig(filepath.Join(root, symbaker.ConfigName))
	require.NoError(t, err)
	assert.Equal(t, "hdr", cfg.Prefix)
	assert.Equal(t, symbaker.DefaultPriority(), cfg.Priority)

	var doc struct {
		Build map[string]string `toml:"build"`
		Env   map[string]string `toml:"env"`
	}
	require.NoError(t, toml.Unmarshal(fn.Panic1(os.ReadFile(filepath.Join(root, ".cargo", "config.toml"))), &doc))
	assert.Equal(t, "aarch64", doc.Build["target"])
	assert.Equal(t, map[string]string{
		symbaker.EnvConfig:         filepath.Join(root, symbaker.ConfigName),
		symbaker.EnvRequireConfig:  "1",
		symbaker.EnvEnforceInherit: "0",
		symbaker.EnvInitialized:    "1",
	}, doc.Env)
	assert.Contains(t, w.String(), "kept existing [env].SYMBAKER_ENFORCE_INHERIT")
	assert.DirExists(t, filepath.Join(root, report.OutputDir))

	w.Reset()
	require.NoError(t, initWorkspace(root, "other", false, &w))
	assert.Contains(t, w.String(), "kept existing "+filepath.Join(root, symbaker.ConfigName))
	cfg = fn.Panic1(symbaker.ReadConfig(filepath.Join(root, symbaker.ConfigName)))
	assert.Equal(t, "hdr", cfg.Prefix)

	require.NoError(t, initWorkspace(root, "", true, &w))
	cfg = fn.Panic1(symbaker.ReadConfig(filepath.Join(root, symbaker.ConfigName)))
	assert.Empty(t, cfg.Prefix)

	env := symbaker.MapEnv{}
	for k, v := range doc.Env {
		env[k] = v
	}
	env[symbaker.EnvEnforceInherit] = "1"
	assert.NoError(t, symbaker.CheckInitialized(env))
}

func TestRunResolve(t *testing.T) {
	e := symbaker.MapEnv{symbaker.EnvPkgName: "rules_app", symbaker.EnvTopPackage: "rules_app"}
	r := symbaker.NewResolver(e, nil, nil)
	rules, err := parseRules([]string{"include_regex=^keep_,special$", "exclude_glob=*skip*", "template={prefix}{sep}{module}_{name}{suffix}", "suffix=_x"})
	require.NoError(t, err)
	var w bytes.Buffer
	require.NoError(t, runResolve(r, symbaker.Request{}, "exports", []string{"keep_one", "special", "keep_skip", "other"}, rules, &w))
	assert.Equal(t, `package=rules_app prefix=rules_app sep=__ source=top_package
keep_one -> rules_app__exports_keep_one_x
special -> rules_app__exports_special_x
`, w.String())

	_, err = parseRules([]string{"novalue"})
	assert.Error(t, err)
}

func TestRunResolveEnforced(t *testing.T) {
	e := symbaker.MapEnv{symbaker.EnvPkgName: "dep", symbaker.EnvEnforceInherit: "1"}
	err := runResolve(symbaker.NewResolver(e, nil, nil), symbaker.Request{}, "", nil, symbaker.ModuleRules{}, &bytes.Buffer{})
	var v *symbaker.ViolationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "dep", v.Package)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "a.go"), []byte("package a"))
	write(t, filepath.Join(src, "sub", "deep", "b.go"), []byte("package b"))
	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDir(src, dst, nil))
	assert.Equal(t, "package b", string(fn.Panic1(os.ReadFile(filepath.Join(dst, "sub", "deep", "b.go")))))
	assert.FileExists(t, filepath.Join(dst, "a.go"))
}
