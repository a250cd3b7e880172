package goobj

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersions(t *testing.T) {
	got := versions(
		[]string{"github.com/BurntSushi/toml", "fmt", "golang.org/x/sync/errgroup"},
		[]string{
			"gofile..$GOROOT/src/fmt/print.go",
			"gofile../home/u/go/pkg/mod/github.com/!burnt!sushi/toml@v1.3.2/decode.go",
			"gofile../home/u/go/pkg/mod/golang.org/x/sync@v0.8.0/errgroup/errgroup.go",
			"/work/main.go",
		})
	assert.Equal(t, map[string]string{
		"github.com/BurntSushi/toml": "v1.3.2",
		"fmt":                        "",
		"golang.org/x/sync/errgroup": "",
	}, got)
}

func TestSorted(t *testing.T) {
	m := &Imports{Imports: map[string]string{"b": "", "a": "v1.0.0"}}
	assert.Equal(t, []string{"a@v1.0.0", "b"}, m.Sorted())
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "github.com/BurntSushi", unescape("github.com/!burnt!sushi"))
}

func TestInspectorMissingFile(t *testing.T) {
	i := Inspector{}
	assert.Equal(t, DefaultPkgPath, i.pkg())
	_, err := i.Symbols(filepath.Join(t.TempDir(), "missing.a"))
	require.Error(t, err)
	_, err = i.Imports(filepath.Join(t.TempDir(), "missing.a"))
	require.Error(t, err)
}
