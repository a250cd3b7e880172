package symbaker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSep joins prefix and symbol name.
	DefaultSep = "__"
	// ConfigName is the file DiscoverConfig looks for.
	ConfigName = "symbaker.toml"
	// ConfigNameYAML is the YAML alternative of ConfigName.
	ConfigNameYAML = "symbaker.yaml"
)

// Config is the shared configuration of a build.
type Config struct {
	Prefix    string            `toml:"prefix,omitempty" yaml:"prefix,omitempty"`
	Sep       string            `toml:"sep,omitempty" yaml:"sep,omitempty"`
	Priority  []string          `toml:"priority,omitempty" yaml:"priority,omitempty"`
	Overrides map[string]string `toml:"overrides,omitempty" yaml:"overrides,omitempty"`
	Path      string            `toml:"-" yaml:"-"` // file the values were read from
}

// Separator returns the configured separator or DefaultSep.
func (c Config) Separator() string {
	if c.Sep == "" {
		return DefaultSep
	}
	return c.Sep
}

// Order returns the configured priority or DefaultPriority.
func (c Config) Order() []string {
	if len(c.Priority) == 0 {
		return DefaultPriority()
	}
	return c.Priority
}

// ReadConfig decodes a config file. Files ending in .yaml or .yml are YAML,
// anything else is TOML.
func ReadConfig(path string) (c Config, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		err = toml.Unmarshal(data, &c)
	}
	if err != nil {
		err = fmt.Errorf("decode %s: %w", path, err)
		return
	}
	c.Path = path
	return
}

// LoadConfig reads the file named by SYMBAKER_CONFIG and applies the
// SYMBAKER_SEP and SYMBAKER_PRIORITY overrides. Failures fall back to the
// defaults; they are only reported through tc.
func LoadConfig(env Environment, tc *TraceContext) (c Config) {
	if p, ok := NonBlank(env, EnvConfig); ok {
		var err error
		if c, err = ReadConfig(p); err != nil {
			tc.Printf("", "config load failed, using defaults: %v", err)
			c = Config{}
		}
	}
	if v, ok := NonBlank(env, EnvSep); ok {
		c.Sep = v
	}
	if v, ok := NonBlank(env, EnvPriority); ok {
		c.Priority = splitList(v)
	}
	return
}

// DiscoverConfig walks from dir towards the root and returns the first
// symbaker.toml or symbaker.yaml found.
func DiscoverConfig(dir string) (string, bool) {
	return walkUp(dir, func(d string) (string, bool) {
		for _, n := range []string{ConfigName, ConfigNameYAML} {
			p := filepath.Join(d, n)
			if isFile(p) {
				return p, true
			}
		}
		return "", false
	})
}

// walkUp calls visit for dir and each of its parents until visit accepts one.
func walkUp(dir string, visit func(string) (string, bool)) (string, bool) {
	if dir == "" {
		return "", false
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if p, ok := visit(dir); ok {
			return p, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func splitList(v string) (out []string) {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return
}
