package rules

import (
	"fmt"

	"github.com/wardenscan/warden/internal/frame"
)

// CustomRule is one entry from rules/*.yaml: a pattern-based rule with
// an expr condition, example snippets for documentation, and its own
// severity/blocker overrides.
type CustomRule struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Condition   string `yaml:"condition"`
	Severity    string `yaml:"severity"`
	IsBlocker   bool   `yaml:"isBlocker"`
	Enabled     bool   `yaml:"enabled"`
	Examples    []string `yaml:"examples"`

	compiled *Condition
}

// Compile compiles r's condition expression, caching the result on the
// rule so repeated Matches calls don't recompile per finding.
func (r *CustomRule) Compile() error {
	if r.Condition == "" {
		return nil
	}
	c, err := CompileCondition(r.Condition)
	if err != nil {
		return fmt.Errorf("rules: custom rule %s: %w", r.ID, err)
	}
	r.compiled = c
	return nil
}

// Matches reports whether f satisfies r's condition. A disabled rule or
// one with no condition never matches.
func (r *CustomRule) Matches(f frame.Finding) bool {
	if !r.Enabled || r.compiled == nil {
		return false
	}
	return r.compiled.Evaluate(f)
}

// CompileAll compiles every rule in the set, collecting (not aborting
// on) individual compile errors so one malformed rule file doesn't
// prevent the rest of the set from loading.
func CompileAll(customRules []*CustomRule) []error {
	var errs []error
	for _, r := range customRules {
		if err := r.Compile(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
