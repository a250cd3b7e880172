package symbaker

import (
	"errors"
	"fmt"
)

// SetupHint tells users how to initialize a workspace.
const SetupHint = "run `symdump init --prefix <your_prefix>` from the workspace root"

var (
	ErrNotInitialized = errors.New("workspace not initialized")
)

// CheckInitialized verifies the markers `symdump init` leaves behind so that
// every build resolves deterministically.
func CheckInitialized(env Environment) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s; %s", ErrNotInitialized, fmt.Sprintf(format, args...), SetupHint)
	}
	if !Truthy(env, EnvInitialized) {
		return fail("missing %s=1", EnvInitialized)
	}
	cfg, ok := NonBlank(env, EnvConfig)
	if !ok {
		return fail("missing %s", EnvConfig)
	}
	if !isFile(cfg) {
		return fail("%s points to missing file %s", EnvConfig, cfg)
	}
	if !Truthy(env, EnvRequireConfig) {
		return fail("expected %s=1 for deterministic builds", EnvRequireConfig)
	}
	if !Truthy(env, EnvEnforceInherit) {
		return fail("expected %s=1 to prevent dependency prefix leaks", EnvEnforceInherit)
	}
	return nil
}
