package symbaker

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTraceNilSafe(t *testing.T) {
	var tc *TraceContext
	assert.False(t, tc.Enabled())
	assert.NotNil(t, tc.Logger())
	tc.Printf("p", "ignored %d", 1)
	tc.DumpEnv("p", MapEnv{})
	assert.False(t, tc.WarnOnce("k", "msg"))
	assert.Nil(t, tc.Lines())
}

func TestTraceDisabledRecordsNothing(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "trace.log")
	tc := NewTraceContext(false, sink, zap.NewNop())
	tc.Printf("p", "x")
	assert.Empty(t, tc.Lines())
	assert.NoFileExists(t, sink)
}

func TestTraceDumpEnvOncePerPackage(t *testing.T) {
	tc := NewTraceContext(true, "", nil)
	env := MapEnv{EnvPkgName: "a", EnvPrefix: "hdr"}
	tc.DumpEnv("a", env)
	tc.DumpEnv("a", env)
	tc.DumpEnv("b", env)
	lines := tc.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[symbaker pkg=a] env "))
	assert.Contains(t, lines[0], `SYMBAKER_PREFIX="hdr"`)
	assert.Contains(t, lines[0], "SYMBAKER_SEP=<unset>")
	assert.True(t, strings.HasPrefix(lines[1], "[symbaker pkg=b] env "))
}

func TestTraceSinkConcurrentAppend(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "nested", "trace.log")
	env := MapEnv{EnvTrace: "1", EnvTraceFile: sink}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		tc := TraceFromEnv(env, nil)
		wg.Add(1)
		go func(pkg string) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				tc.Printf(pkg, "line %d", j)
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()
	data, err := os.ReadFile(sink)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 100)
	for _, l := range lines {
		assert.Regexp(t, `^\[symbaker pkg=[a-d]\] line \d+$`, l)
	}
}

func TestWarnOnce(t *testing.T) {
	tc := NewTraceContext(false, "", nil)
	assert.True(t, tc.WarnOnce("k", "first"))
	assert.False(t, tc.WarnOnce("k", "again"))
	assert.True(t, tc.WarnOnce("other", "first"))
}
