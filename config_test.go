package symbaker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigTOML(t *testing.T) {
	p := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, p, `prefix = "hdr"
sep = "_"
priority = ["config", "crate"]

[overrides]
ssbusync = "hdr"
`)
	c, err := ReadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Prefix:    "hdr",
		Sep:       "_",
		Priority:  []string{KeyConfig, KeyCrate},
		Overrides: map[string]string{"ssbusync": "hdr"},
		Path:      p,
	}, c)
}

func TestReadConfigYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), ConfigNameYAML)
	writeFile(t, p, "prefix: hdr\noverrides:\n  ssbusync: other\n")
	c, err := ReadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "hdr", c.Prefix)
	assert.Equal(t, DefaultSep, c.Separator())
	assert.Equal(t, DefaultPriority(), c.Order())
	assert.Equal(t, "other", c.Overrides["ssbusync"])
}

func TestLoadConfigDegradesToDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, p, "prefix = [broken")
	tc := NewTraceContext(true, "", nil)
	c := LoadConfig(MapEnv{EnvConfig: p}, tc)
	assert.Equal(t, Config{}, c)
	require.Len(t, tc.Lines(), 1)
	assert.Contains(t, tc.Lines()[0], "config load failed")

	c = LoadConfig(MapEnv{EnvConfig: filepath.Join(t.TempDir(), "missing.toml")}, nil)
	assert.Equal(t, DefaultSep, c.Separator())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, p, "prefix = \"hdr\"\nsep = \"_\"\n")
	c := LoadConfig(MapEnv{EnvConfig: p, EnvSep: "::", EnvPriority: " top_package, ,crate "}, nil)
	assert.Equal(t, "hdr", c.Prefix)
	assert.Equal(t, "::", c.Sep)
	assert.Equal(t, []string{KeyTopPackage, KeyCrate}, c.Priority)
}

func TestDiscoverConfig(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	writeFile(t, filepath.Join(deep, "keep"), "")
	_, ok := DiscoverConfig(deep)
	assert.False(t, ok)

	want := filepath.Join(root, "a", ConfigNameYAML)
	writeFile(t, want, "prefix: x\n")
	got, ok := DiscoverConfig(deep)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = DiscoverConfig("")
	assert.False(t, ok)
}

func TestFindWorkspaceManifest(t *testing.T) {
	root := t.TempDir()
	member := filepath.Join(root, "crates", "dep")
	writeFile(t, filepath.Join(member, ManifestName), "[package]\nname = \"dep\"\n\n[package.metadata.symbaker]\nprefer_package_prefix = true\n")
	writeFile(t, filepath.Join(root, "crates", ManifestName), "not toml = = =")
	writeFile(t, filepath.Join(root, ManifestName), "[workspace]\n[workspace.metadata.symbaker]\nprefix = \"hdr\"\n")

	p, ok := FindWorkspaceManifest(member)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ManifestName), p)

	m, err := ReadManifest(filepath.Join(member, ManifestName))
	require.NoError(t, err)
	meta, ok := m.PackageMeta()
	require.True(t, ok)
	assert.True(t, meta.PreferPackagePrefix)
	_, ok = m.WorkspacePrefix()
	assert.False(t, ok)
}

func TestSourcesProbes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "[package]\nname = \"dep\"\n\n[package.metadata.symbaker]\nprefix = \"own\"\nprefer_package_prefix = true\n")
	env := MapEnv{EnvManifestDir: dir, EnvPrimaryPackage: "", EnvPkgName: "dep", EnvPrefix: "envp"}
	src := NewSources(Request{}, env, Config{Prefix: "cfg", Overrides: map[string]string{"dep": "ov"}}, nil)

	v, ok := src.PackagePrefix()
	assert.True(t, ok)
	assert.Equal(t, "own", v)
	assert.True(t, src.PrefersOwnPrefix())
	assert.Equal(t, "dep", src.PackageName())
	v, ok = src.TopPackage()
	assert.True(t, ok)
	assert.Equal(t, "dep", v)
	v, _ = src.EnvPrefix()
	assert.Equal(t, "envp", v)
	v, _ = src.ConfigPrefix()
	assert.Equal(t, "cfg", v)
	v, _ = src.Override("dep")
	assert.Equal(t, "ov", v)
	_, ok = src.Attribute()
	assert.False(t, ok)

	empty := NewSources(Request{}, MapEnv{}, Config{}, nil)
	assert.Equal(t, DefaultPackageName, empty.PackageName())
	_, ok = empty.WorkspacePrefix()
	assert.False(t, ok)
	_, ok = empty.TopPackage()
	assert.False(t, ok)
}

func TestFindPackageRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[workspace]\n")
	deep := filepath.Join(root, "src", "bin")
	writeFile(t, filepath.Join(deep, "main.rs"), "")
	got, ok := FindPackageRoot(deep)
	require.True(t, ok)
	assert.Equal(t, root, got)
}
