package symbaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEnforceLocalSources(t *testing.T) {
	for _, s := range []Source{SourcePackage, SourceCrateNameFallback, SourceCrateNameFallbackAfterPriority} {
		t.Run(s.String(), func(t *testing.T) {
			err := Enforce("dep", s, false, true, nil)
			var v *ViolationError
			require.ErrorAs(t, err, &v)
			assert.True(t, errors.Is(err, ErrNotInherited))
			assert.Contains(t, err.Error(), `package "dep"`)
			assert.Contains(t, err.Error(), "[overrides] dep")
			assert.Contains(t, err.Error(), EnvTopPackage)

			assert.NoError(t, Enforce("dep", s, true, true, nil), "top level may keep a local prefix")
		})
	}
}

func TestEnforceExemptSources(t *testing.T) {
	for _, s := range []Source{
		SourceOverride, SourcePreferOwnPackage, SourcePreferOwnCrateFallback, SourceAttribute,
		SourceEnvironmentOverride, SourceConfigFile, SourceTopLevelPackage, SourceWorkspace,
	} {
		assert.NoError(t, Enforce("dep", s, false, true, nil), s.String())
	}
}

func TestEnforceWarnsOnceWhenInactive(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tc := NewTraceContext(true, "", zap.New(core))
	for i := 0; i < 3; i++ {
		assert.NoError(t, Enforce("dep", SourceCrateNameFallback, false, false, tc))
	}
	assert.NoError(t, Enforce("other", SourcePackage, false, false, tc))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "dep", logs.All()[0].ContextMap()["package"])
	assert.Equal(t, "other", logs.All()[1].ContextMap()["package"])
	assert.Len(t, tc.Lines(), 2)
}

func TestIsTopLevel(t *testing.T) {
	src := stubSources{name: "host", values: map[Source]string{SourceTopLevelPackage: "host"}}
	assert.True(t, IsTopLevel("host", src, MapEnv{}))
	assert.False(t, IsTopLevel("dep", src, MapEnv{}))
	assert.True(t, IsTopLevel("dep", src, MapEnv{EnvPrimaryPackage: "1"}))
	assert.True(t, IsTopLevel("dep", src, MapEnv{EnvPrimaryPackage: "1", EnvPkgName: "dep"}))
	assert.False(t, IsTopLevel("dep", src, MapEnv{EnvPrimaryPackage: "1", EnvPkgName: "app"}))
	assert.False(t, IsTopLevel("dep", stubSources{name: "dep"}, MapEnv{}))
}

func TestEnforcementActive(t *testing.T) {
	assert.True(t, EnforcementActive(MapEnv{EnvEnforceInherit: " Yes "}))
	assert.False(t, EnforcementActive(MapEnv{EnvEnforceInherit: "0"}))
	assert.False(t, EnforcementActive(MapEnv{}))
}

func TestSourceLabels(t *testing.T) {
	for s := SourceOverride; s <= SourceCrateNameFallbackAfterPriority; s++ {
		back, ok := ParseSource(s.String())
		require.True(t, ok, s.String())
		assert.Equal(t, s, back)
	}
	_, ok := ParseSource("nope")
	assert.False(t, ok)
	assert.Equal(t, "Source(42)", Source(42).String())
}
