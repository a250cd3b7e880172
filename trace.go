package symbaker

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// TraceTag opens every trace line; the package name follows as pkg=<name>.
const TraceTag = "[symbaker"

// TraceContext records resolution decisions. Lines are kept in memory and,
// when a sink is set, appended to it one write per line so that concurrent
// builds sharing the file never interleave inside a line.
//
// A nil *TraceContext is valid and records nothing.
type TraceContext struct {
	enabled bool
	sink    string
	log     *zap.Logger

	mu     sync.Mutex
	lines  []string
	envs   map[string]struct{}
	warned map[string]struct{}
}

// NewTraceContext creates a trace. sink may be empty; log may be nil.
func NewTraceContext(enabled bool, sink string, log *zap.Logger) *TraceContext {
	if log == nil {
		log = zap.NewNop()
	}
	return &TraceContext{
		enabled: enabled,
		sink:    sink,
		log:     log,
		envs:    make(map[string]struct{}),
		warned:  make(map[string]struct{}),
	}
}

// TraceFromEnv enables tracing with SYMBAKER_TRACE and sinks to
// SYMBAKER_TRACE_FILE.
func TraceFromEnv(env Environment, log *zap.Logger) *TraceContext {
	sink, _ := NonBlank(env, EnvTraceFile)
	return NewTraceContext(Truthy(env, EnvTrace), sink, log)
}

func (t *TraceContext) Enabled() bool {
	return t != nil && t.enabled
}

// Logger never returns nil.
func (t *TraceContext) Logger() *zap.Logger {
	if t == nil {
		return zap.NewNop()
	}
	return t.log
}

// Printf records one line for pkg when tracing is enabled.
func (t *TraceContext) Printf(pkg, format string, args ...any) {
	if !t.Enabled() {
		return
	}
	line := fmt.Sprintf("%s pkg=%s] %s", TraceTag, pkg, fmt.Sprintf(format, args...))
	t.mu.Lock()
	t.lines = append(t.lines, line)
	t.mu.Unlock()
	t.log.Debug("trace", zap.String("pkg", pkg), zap.String("line", line))
	t.append(line)
}

// DumpEnv records the environment snapshot once per package.
func (t *TraceContext) DumpEnv(pkg string, env Environment) {
	if !t.Enabled() {
		return
	}
	t.mu.Lock()
	_, done := t.envs[pkg]
	t.envs[pkg] = struct{}{}
	t.mu.Unlock()
	if !done {
		t.Printf(pkg, "env %s", Snapshot(env))
	}
}

// WarnOnce logs msg at warn level the first time key is seen and reports
// whether it did.
func (t *TraceContext) WarnOnce(key, msg string, fields ...zap.Field) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	_, seen := t.warned[key]
	t.warned[key] = struct{}{}
	t.mu.Unlock()
	if seen {
		return false
	}
	t.log.Warn(msg, fields...)
	return true
}

// Lines returns a copy of the recorded lines.
func (t *TraceContext) Lines() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *TraceContext) append(line string) {
	if t.sink == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(t.sink), 0o755); err != nil {
		t.log.Debug("trace sink", zap.Error(err))
		return
	}
	f, err := os.OpenFile(t.sink, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.log.Debug("trace sink", zap.Error(err))
		return
	}
	if _, err = f.Write([]byte(line + "\n")); err != nil {
		t.log.Debug("trace sink", zap.Error(err))
	}
	_ = f.Close()
}

func quote(s string) string {
	return strconv.Quote(s)
}
