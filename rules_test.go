package symbaker

import (
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleRules(t *testing.T) {
	rules, err := ParseModuleRules(map[string]string{
		RuleIncludeRegex: "^keep_,special$",
		RuleExcludeGlob:  "*skip*",
		RuleTemplate:     "{prefix}{sep}{module}_{name}{suffix}",
		RuleSuffix:       "_x",
		"unknown":        "ignored",
	})
	require.NoError(t, err)
	rp := ResolvedPrefix{Prefix: "hdr", Separator: "__"}

	tests := []struct {
		name   string
		prefix bool
		export string
	}{
		{"keep_one", true, "hdr__exports_keep_one_x"},
		{"special", true, "hdr__exports_special_x"},
		{"keep_skip", false, ""},
		{"other", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.prefix, rules.ShouldPrefix("exports", tt.name))
			if tt.prefix {
				assert.Equal(t, tt.export, rules.RenderExportName(rp, "exports", tt.name))
			}
		})
	}
}

func TestModuleRulesQualifiedMatch(t *testing.T) {
	rules, err := ParseModuleRules(map[string]string{
		RuleIncludeGlob:  "net::*",
		RuleExcludeRegex: "::internal_",
	})
	require.NoError(t, err)
	assert.True(t, rules.ShouldPrefix("net", "open"))
	assert.False(t, rules.ShouldPrefix("net", "internal_open"))
	assert.False(t, rules.ShouldPrefix("fs", "open"))
}

func TestModuleRulesDefaults(t *testing.T) {
	var rules ModuleRules
	assert.True(t, rules.ShouldPrefix("m", "anything"))
	rp := ResolvedPrefix{Prefix: "p", Separator: "_"}
	assert.Equal(t, "p_f", rules.RenderExportName(rp, "m", "f"))
	rules.Suffix = "_v2"
	assert.Equal(t, "p_f_v2", rules.RenderExportName(rp, "m", "f"))
}

func TestModuleRulesInvalidRegex(t *testing.T) {
	_, err := ParseModuleRules(map[string]string{RuleIncludeRegex: "ok,(unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), RuleIncludeRegex)
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestModuleRulesInvalidGlob(t *testing.T) {
	for _, key := range []string{RuleIncludeGlob, RuleExcludeGlob} {
		_, err := ParseModuleRules(map[string]string{key: "ok_*,[abc"})
		require.ErrorIs(t, err, doublestar.ErrBadPattern, key)
		assert.Contains(t, err.Error(), key)
		assert.Contains(t, err.Error(), "[abc")
	}
	rules, err := ParseModuleRules(map[string]string{RuleIncludeGlob: "[abc]*"})
	require.NoError(t, err)
	assert.True(t, rules.ShouldPrefix("m", "alpha"))
	assert.False(t, rules.ShouldPrefix("m", "delta"))
}
