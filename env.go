package symbaker

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// environment keys
const (
	EnvConfig         = "SYMBAKER_CONFIG"
	EnvPrefix         = "SYMBAKER_PREFIX"
	EnvSep            = "SYMBAKER_SEP"
	EnvPriority       = "SYMBAKER_PRIORITY"
	EnvTopPackage     = "SYMBAKER_TOP_PACKAGE"
	EnvEnforceInherit = "SYMBAKER_ENFORCE_INHERIT"
	EnvInitialized    = "SYMBAKER_INITIALIZED"
	EnvRequireConfig  = "SYMBAKER_REQUIRE_CONFIG"
	EnvTrace          = "SYMBAKER_TRACE"
	EnvTraceFile      = "SYMBAKER_TRACE_FILE"

	EnvPkgName        = "CARGO_PKG_NAME"
	EnvManifestDir    = "CARGO_MANIFEST_DIR"
	EnvPrimaryPackage = "CARGO_PRIMARY_PACKAGE"
)

type (
	// Environment is a read only view of process variables.
	Environment interface {
		Lookup(key string) (string, bool)
	}
	// OSEnv reads the process environment.
	OSEnv struct{}
	// MapEnv is a fixed environment, mostly for tests and env files.
	MapEnv  map[string]string
	layered []Environment
)

func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (m MapEnv) Lookup(key string) (v string, ok bool) {
	v, ok = m[key]
	return
}

func (l layered) Lookup(key string) (string, bool) {
	for _, e := range l {
		if v, ok := e.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Layer returns an Environment that consults envs in order.
func Layer(envs ...Environment) Environment {
	return layered(envs)
}

// ReadEnvFiles reads dotenv files into a MapEnv, later files winning.
func ReadEnvFiles(files ...string) (MapEnv, error) {
	m, err := godotenv.Read(files...)
	if err != nil {
		return nil, err
	}
	return MapEnv(m), nil
}

// NonBlank returns the value of key when it holds more than whitespace.
func NonBlank(env Environment, key string) (string, bool) {
	v, ok := env.Lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Truthy reports whether key is set to 1, true, yes or on.
func Truthy(env Environment, key string) bool {
	v, ok := env.Lookup(key)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Snapshot renders the symbaker and cargo variables of env as key=value pairs.
func Snapshot(env Environment) string {
	keys := []string{
		EnvPkgName, EnvManifestDir, EnvPrimaryPackage,
		EnvConfig, EnvPrefix, EnvSep, EnvPriority, EnvTopPackage, EnvEnforceInherit,
	}
	sort.Strings(keys)
	b := strings.Builder{}
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		if v, ok := env.Lookup(k); ok {
			b.WriteString(k + "=" + quote(v))
		} else {
			b.WriteString(k + "=<unset>")
		}
	}
	return b.String()
}
