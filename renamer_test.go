package symbaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordRenames(into map[string]string) Renamer {
	return RenamerFunc(func(old, new string) error {
		into[old] = new
		return nil
	})
}

func TestApplyFreeFunctions(t *testing.T) {
	renamed := map[string]string{}
	tc := NewTraceContext(true, "", nil)
	rp := ResolvedPrefix{Prefix: "hdr", Separator: "__"}
	// rules only apply inside a module
	rules := ModuleRules{ExcludeGlob: []string{"*"}}
	out, err := Apply(recordRenames(renamed), "plugin", rp, "", []string{"init", "run"}, rules, tc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"init": "hdr__init", "run": "hdr__run"}, renamed)
	assert.Equal(t, []Export{
		{Name: "init", Export: "hdr__init"},
		{Name: "run", Export: "hdr__run"},
	}, out)
	assert.Equal(t, []string{
		`[symbaker pkg=plugin] export_name="hdr__init" fn="init"`,
		`[symbaker pkg=plugin] export_name="hdr__run" fn="run"`,
	}, tc.Lines())
}

func TestApplyModuleRules(t *testing.T) {
	rules, err := ParseModuleRules(map[string]string{
		RuleIncludeRegex: "^keep_,special$",
		RuleExcludeGlob:  "*skip*",
		RuleTemplate:     "{prefix}{sep}{module}_{name}{suffix}",
		RuleSuffix:       "_x",
	})
	require.NoError(t, err)
	renamed := map[string]string{}
	rp := ResolvedPrefix{Prefix: "rules_app", Separator: "__"}
	out, err := Apply(recordRenames(renamed), "rules_app", rp, "exports",
		[]string{"keep_one", "special", "keep_skip", "other"}, rules, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"keep_one": "rules_app__exports_keep_one_x",
		"special":  "rules_app__exports_special_x",
	}, renamed)
	require.Len(t, out, 2)
	assert.Equal(t, "exports", out[0].Module)
}

func TestApplyStopsOnRenameError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	rn := RenamerFunc(func(old, new string) error {
		calls++
		if old == "b" {
			return boom
		}
		return nil
	})
	out, err := Apply(rn, "p", ResolvedPrefix{Prefix: "p", Separator: "_"}, "", []string{"a", "b", "c"}, ModuleRules{}, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rename b to p_b")
	assert.Equal(t, 2, calls)
	assert.Equal(t, []Export{{Name: "a", Export: "p_a"}}, out)
}
