package symbaker

import (
	"go.uber.org/zap"
)

type (
	// Candidate is one value a source offered during resolution.
	Candidate struct {
		Source Source
		Raw    string
	}
	// ResolvedPrefix is the single prefix decision for one package.
	ResolvedPrefix struct {
		Prefix    string // sanitized
		Raw       string // as the source provided it
		Separator string
		Source    Source
	}
	// Resolver resolves and enforces prefixes for packages of one build.
	Resolver struct {
		Env      Environment
		Config   Config
		Trace    *TraceContext
		Metadata MetadataQuery // optional top package lookup
	}
)

// ExportName renders the exported name of a symbol called name.
func (r ResolvedPrefix) ExportName(name string) string {
	return r.Prefix + r.Separator + name
}

// NewResolver loads the configuration from env.
func NewResolver(env Environment, tc *TraceContext, query MetadataQuery) *Resolver {
	return &Resolver{Env: env, Config: LoadConfig(env, tc), Trace: tc, Metadata: query}
}

// Resolve computes the prefix of req and applies the inheritance policy.
func (r *Resolver) Resolve(req Request) (rp ResolvedPrefix, err error) {
	src := NewSources(req, r.Env, r.Config, r.Metadata)
	pkg := src.PackageName()
	r.Trace.DumpEnv(pkg, r.Env)
	rp = Resolve(src, r.Config, r.Trace)
	err = Enforce(pkg, rp.Source, IsTopLevel(pkg, src, r.Env), EnforcementActive(r.Env), r.Trace)
	return
}

// Resolve walks the sources in precedence order and returns the first usable
// prefix. An override for the package wins outright; the package's own
// prefer_package_prefix flag bypasses the priority list; otherwise the
// configured priority decides, falling back to the package name.
func Resolve(src Sources, cfg Config, tc *TraceContext) ResolvedPrefix {
	sep := cfg.Separator()
	pkg := src.PackageName()
	pick := func(c Candidate) ResolvedPrefix {
		rp := ResolvedPrefix{Prefix: Sanitize(c.Raw), Raw: c.Raw, Separator: sep, Source: c.Source}
		tc.Printf(pkg, "selected source=%s raw=%s sanitized=%s sep=%s", c.Source, quote(c.Raw), quote(rp.Prefix), quote(sep))
		tc.Logger().Debug("prefix resolved",
			zap.String("package", pkg),
			zap.Stringer("source", c.Source),
			zap.String("prefix", rp.Prefix))
		return rp
	}
	consider := func(s Source, v string, ok bool) (Candidate, bool) {
		ok = ok && !blank(v)
		if ok {
			tc.Printf(pkg, "candidate source=%s raw=%s sanitized=%s", s, quote(v), quote(Sanitize(v)))
		} else {
			tc.Printf(pkg, "candidate source=%s none", s)
		}
		return Candidate{Source: s, Raw: v}, ok
	}

	v, ok := src.Override(pkg)
	if c, ok := consider(SourceOverride, v, ok); ok {
		return pick(c)
	}
	if src.PrefersOwnPrefix() {
		tc.Printf(pkg, "prefer_package_prefix set, priority list bypassed")
		v, ok = src.PackagePrefix()
		if c, ok := consider(SourcePreferOwnPackage, v, ok); ok {
			return pick(c)
		}
		return pick(Candidate{Source: SourcePreferOwnCrateFallback, Raw: pkg})
	}
	for _, key := range cfg.Order() {
		s, known := priorityKey(key)
		if !known {
			tc.Printf(pkg, "priority key %s unknown, skipped", quote(key))
			continue
		}
		v, ok = "", false
		switch s {
		case SourceAttribute:
			v, ok = src.Attribute()
		case SourceEnvironmentOverride:
			v, ok = src.EnvPrefix()
		case SourceConfigFile:
			v, ok = src.ConfigPrefix()
		case SourceTopLevelPackage:
			v, ok = src.TopPackage()
		case SourceWorkspace:
			v, ok = src.WorkspacePrefix()
		case SourcePackage:
			v, ok = src.PackagePrefix()
		case SourceCrateNameFallback:
			v, ok = pkg, true
		}
		if c, ok := consider(s, v, ok); ok {
			return pick(c)
		}
	}
	return pick(Candidate{Source: SourceCrateNameFallbackAfterPriority, Raw: pkg})
}

// ResolveFor is Resolve over the default sources of req.
func ResolveFor(req Request, env Environment, cfg Config, tc *TraceContext) ResolvedPrefix {
	return Resolve(NewSources(req, env, cfg, nil), cfg, tc)
}
