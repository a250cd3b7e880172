package symbaker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the package manifest file of the build tool.
const ManifestName = "Cargo.toml"

type (
	// Manifest holds the parts of a package manifest symbaker reads.
	Manifest struct {
		Package   *ManifestPackage   `toml:"package"`
		Workspace *ManifestWorkspace `toml:"workspace"`
	}
	ManifestPackage struct {
		Name     string       `toml:"name"`
		Metadata ManifestMeta `toml:"metadata"`
	}
	ManifestWorkspace struct {
		Metadata ManifestMeta `toml:"metadata"`
	}
	ManifestMeta struct {
		Symbaker *PackageMeta `toml:"symbaker"`
	}
	// PackageMeta is the [*.metadata.symbaker] table.
	PackageMeta struct {
		Prefix              string `toml:"prefix"`
		PreferPackagePrefix bool   `toml:"prefer_package_prefix"`
	}
)

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (m Manifest, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	if err = toml.Unmarshal(data, &m); err != nil {
		err = fmt.Errorf("decode %s: %w", path, err)
	}
	return
}

// PackageMeta returns [package.metadata.symbaker], if present.
func (m Manifest) PackageMeta() (*PackageMeta, bool) {
	if m.Package == nil || m.Package.Metadata.Symbaker == nil {
		return nil, false
	}
	return m.Package.Metadata.Symbaker, true
}

// WorkspacePrefix returns [workspace.metadata.symbaker].prefix, if present.
func (m Manifest) WorkspacePrefix() (string, bool) {
	if m.Workspace == nil || m.Workspace.Metadata.Symbaker == nil || m.Workspace.Metadata.Symbaker.Prefix == "" {
		return "", false
	}
	return m.Workspace.Metadata.Symbaker.Prefix, true
}

// FindWorkspaceManifest walks from dir towards the root and returns the first
// manifest declaring a workspace symbaker prefix. Manifests that fail to
// parse are stepped over.
func FindWorkspaceManifest(dir string) (string, bool) {
	return walkUp(dir, func(d string) (string, bool) {
		p := filepath.Join(d, ManifestName)
		if !isFile(p) {
			return "", false
		}
		m, err := ReadManifest(p)
		if err != nil {
			return "", false
		}
		_, ok := m.WorkspacePrefix()
		return p, ok
	})
}

// FindPackageRoot walks from dir towards the root and returns the first
// directory holding a manifest.
func FindPackageRoot(dir string) (string, bool) {
	return walkUp(dir, func(d string) (string, bool) {
		return d, isFile(filepath.Join(d, ManifestName))
	})
}
