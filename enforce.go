package symbaker

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNotInherited is wrapped by every ViolationError.
	ErrNotInherited = errors.New("dependency resolved a local prefix instead of inheriting one")
)

// ViolationError rejects a dependency whose prefix was invented locally, which
// would leak into the final artifact and break cross-plugin uniqueness.
type ViolationError struct {
	Package string
	Source  Source
}

func (e *ViolationError) Error() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "symbaker: package %q resolved its prefix from %s while %s=1: %v\n", e.Package, e.Source, EnvEnforceInherit, ErrNotInherited)
	b.WriteString("fix one of:\n")
	fmt.Fprintf(&b, "  - add an override to the config file: [overrides] %s = \"<prefix>\"\n", e.Package)
	fmt.Fprintf(&b, "  - set %s to the package the build is invoked for\n", EnvTopPackage)
	b.WriteString("  - declare [workspace.metadata.symbaker] prefix = \"<prefix>\" in the workspace manifest\n")
	fmt.Fprintf(&b, "  - set prefix in the file named by %s, or %s", EnvConfig, EnvPrefix)
	return b.String()
}

func (e *ViolationError) Unwrap() error {
	return ErrNotInherited
}

// EnforcementActive reports whether SYMBAKER_ENFORCE_INHERIT is truthy.
func EnforcementActive(env Environment) bool {
	return Truthy(env, EnvEnforceInherit)
}

// IsTopLevel reports whether pkg is the package the whole build was invoked
// for. CARGO_PRIMARY_PACKAGE only vouches for the package named by
// CARGO_PKG_NAME.
func IsTopLevel(pkg string, src Sources, env Environment) bool {
	if _, ok := env.Lookup(EnvPrimaryPackage); ok {
		if name, named := NonBlank(env, EnvPkgName); !named || name == pkg {
			return true
		}
	}
	top, ok := src.TopPackage()
	return ok && top == pkg
}

// Enforce gates a resolved source. Only the top level package may keep a
// local prefix. Outside enforcement the violation is logged once and
// tolerated.
func Enforce(pkg string, source Source, topLevel, enforcing bool, tc *TraceContext) error {
	if topLevel || !source.Local() {
		return nil
	}
	if enforcing {
		tc.Printf(pkg, "enforce rejected source=%s", source)
		return &ViolationError{Package: pkg, Source: source}
	}
	if tc.WarnOnce("inherit:"+pkg, "dependency uses a local prefix",
		zap.String("package", pkg),
		zap.Stringer("source", source),
		zap.String("hint", "set "+EnvEnforceInherit+"=1 to make this an error")) {
		tc.Printf(pkg, "enforce warned source=%s", source)
	}
	return nil
}
