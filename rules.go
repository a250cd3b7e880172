package symbaker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// rule keys understood by ParseModuleRules
const (
	RuleIncludeRegex = "include_regex"
	RuleExcludeRegex = "exclude_regex"
	RuleIncludeGlob  = "include_glob"
	RuleExcludeGlob  = "exclude_glob"
	RuleTemplate     = "template"
	RuleSuffix       = "suffix"
)

// ModuleRules select which functions of a module get prefixed and how their
// exported name is rendered. The zero value prefixes everything as
// prefix+sep+name.
type ModuleRules struct {
	IncludeRegex []*regexp.Regexp
	ExcludeRegex []*regexp.Regexp
	IncludeGlob  []string
	ExcludeGlob  []string
	Template     string // placeholders {prefix} {sep} {module} {name} {suffix}
	Suffix       string
}

// ParseModuleRules builds rules from annotation arguments. Pattern lists are
// comma separated; unknown keys are ignored.
func ParseModuleRules(args map[string]string) (r ModuleRules, err error) {
	for key, v := range args {
		switch key {
		case RuleIncludeRegex:
			if r.IncludeRegex, err = compileAll(key, splitList(v)); err != nil {
				return
			}
		case RuleExcludeRegex:
			if r.ExcludeRegex, err = compileAll(key, splitList(v)); err != nil {
				return
			}
		case RuleIncludeGlob:
			if r.IncludeGlob, err = validGlobs(key, splitList(v)); err != nil {
				return
			}
		case RuleExcludeGlob:
			if r.ExcludeGlob, err = validGlobs(key, splitList(v)); err != nil {
				return
			}
		case RuleTemplate:
			r.Template = v
		case RuleSuffix:
			r.Suffix = v
		}
	}
	return
}

func compileAll(key string, specs []string) (out []*regexp.Regexp, err error) {
	for _, s := range specs {
		var re *regexp.Regexp
		if re, err = regexp.Compile(s); err != nil {
			err = fmt.Errorf("invalid %s %q: %w", key, s, err)
			return
		}
		out = append(out, re)
	}
	return
}

func validGlobs(key string, specs []string) ([]string, error) {
	for _, g := range specs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid %s %q: %w", key, g, doublestar.ErrBadPattern)
		}
	}
	return specs, nil
}

func globAny(globs []string, name string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
	}
	return false
}

func regexAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (r ModuleRules) included(name string) bool {
	regexOK := len(r.IncludeRegex) == 0 || regexAny(r.IncludeRegex, name)
	globOK := len(r.IncludeGlob) == 0 || globAny(r.IncludeGlob, name)
	return regexOK && globOK
}

func (r ModuleRules) excluded(name string) bool {
	return regexAny(r.ExcludeRegex, name) || globAny(r.ExcludeGlob, name)
}

// ShouldPrefix matches both name and module::name against the rules.
func (r ModuleRules) ShouldPrefix(module, name string) bool {
	subject := module + "::" + name
	include := r.included(name) || r.included(subject)
	return include && !r.excluded(name) && !r.excluded(subject)
}

// RenderExportName renders the exported name of one function.
func (r ModuleRules) RenderExportName(rp ResolvedPrefix, module, name string) string {
	if r.Template == "" {
		return rp.ExportName(name) + r.Suffix
	}
	return strings.NewReplacer(
		"{prefix}", rp.Prefix,
		"{sep}", rp.Separator,
		"{module}", module,
		"{name}", name,
		"{suffix}", r.Suffix,
	).Replace(r.Template)
}
