package symbaker

import (
	"context"
	"path/filepath"
	"strings"
)

// DefaultPackageName stands in when neither the request nor the environment
// names the package.
const DefaultPackageName = "crate"

type (
	// Request describes the package a prefix is resolved for.
	Request struct {
		Attribute    string // prefix given at the annotation site
		HasAttribute bool
		Package      string // package name, CARGO_PKG_NAME when empty
		ManifestDir  string // package directory, CARGO_MANIFEST_DIR when empty
	}
	// Sources are the independent probes the resolution consults. Each one
	// reads a single information source and has no side effects.
	Sources interface {
		Attribute() (string, bool)          //value given at the annotation site
		EnvPrefix() (string, bool)          //SYMBAKER_PREFIX
		ConfigPrefix() (string, bool)       //prefix of the config file
		TopPackage() (string, bool)         //name of the package the build was invoked for
		WorkspacePrefix() (string, bool)    //[workspace.metadata.symbaker] of an enclosing manifest
		PackagePrefix() (string, bool)      //[package.metadata.symbaker] of the package itself
		PackageName() string                //name of the package
		Override(pkg string) (string, bool) //[overrides] entry for pkg
		PrefersOwnPrefix() bool             //prefer_package_prefix opt out
	}
	envSources struct {
		req   Request
		env   Environment
		cfg   Config
		query MetadataQuery
	}
)

// NewSources probes env, the package manifest and cfg for req. query is
// optional and only consulted to find the top level package as a last resort.
func NewSources(req Request, env Environment, cfg Config, query MetadataQuery) Sources {
	return &envSources{req: req, env: env, cfg: cfg, query: query}
}

func (s *envSources) Attribute() (string, bool) {
	return s.req.Attribute, s.req.HasAttribute
}

func (s *envSources) EnvPrefix() (string, bool) {
	return s.env.Lookup(EnvPrefix)
}

func (s *envSources) ConfigPrefix() (string, bool) {
	return s.cfg.Prefix, s.cfg.Prefix != ""
}

func (s *envSources) TopPackage() (string, bool) {
	if v, ok := NonBlank(s.env, EnvTopPackage); ok {
		return v, true
	}
	if _, ok := s.env.Lookup(EnvPrimaryPackage); ok {
		if v, ok := NonBlank(s.env, EnvPkgName); ok {
			return v, true
		}
	}
	if s.query == nil {
		return "", false
	}
	doc, err := s.query.Metadata(context.Background())
	if err != nil {
		return "", false
	}
	return RootPackage(doc)
}

func (s *envSources) WorkspacePrefix() (string, bool) {
	dir, ok := s.manifestDir()
	if !ok {
		return "", false
	}
	p, ok := FindWorkspaceManifest(dir)
	if !ok {
		return "", false
	}
	m, err := ReadManifest(p)
	if err != nil {
		return "", false
	}
	return m.WorkspacePrefix()
}

func (s *envSources) PackagePrefix() (string, bool) {
	meta, ok := s.packageMeta()
	if !ok || meta.Prefix == "" {
		return "", false
	}
	return meta.Prefix, true
}

func (s *envSources) PackageName() string {
	if s.req.Package != "" {
		return s.req.Package
	}
	if v, ok := NonBlank(s.env, EnvPkgName); ok {
		return v
	}
	return DefaultPackageName
}

func (s *envSources) Override(pkg string) (v string, ok bool) {
	v, ok = s.cfg.Overrides[pkg]
	return
}

func (s *envSources) PrefersOwnPrefix() bool {
	meta, ok := s.packageMeta()
	return ok && meta.PreferPackagePrefix
}

func (s *envSources) manifestDir() (string, bool) {
	if s.req.ManifestDir != "" {
		return s.req.ManifestDir, true
	}
	return NonBlank(s.env, EnvManifestDir)
}

func (s *envSources) packageMeta() (*PackageMeta, bool) {
	dir, ok := s.manifestDir()
	if !ok {
		return nil, false
	}
	m, err := ReadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, false
	}
	return m.PackageMeta()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
