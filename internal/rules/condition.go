package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wardenscan/warden/internal/frame"
)

// FindingEnv is the variable environment a custom rule's condition
// expression is compiled and evaluated against: a flattened view of the
// finding attributes authors write conditions over, e.g.
// `severity == "critical" && rule_id startsWith "SEC"`.
type FindingEnv struct {
	Severity  string `expr:"severity"`
	Message   string `expr:"message"`
	RuleID    string `expr:"rule_id"`
	FilePath  string `expr:"file_path"`
	Location  string `expr:"location"`
	IsBlocker bool   `expr:"is_blocker"`
}

func envFromFinding(f frame.Finding) FindingEnv {
	return FindingEnv{
		Severity:  string(f.Severity),
		Message:   f.Message,
		RuleID:    f.RuleID,
		FilePath:  f.FilePath,
		Location:  f.Location,
		IsBlocker: f.IsBlocker,
	}
}

// Condition is a compiled custom-rule condition: one rules/*.yaml
// entry's `condition:` expression, compiled once and evaluated per
// finding.
type Condition struct {
	source  string
	program *vm.Program
}

// CompileCondition compiles a condition expression against FindingEnv.
// Compilation happens once at rule-load time so a malformed expression
// in one custom rule is reported at load, not buried in a per-finding
// evaluation failure deep in the validation phase.
func CompileCondition(source string) (*Condition, error) {
	program, err := expr.Compile(source, expr.Env(FindingEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rules: invalid condition %q: %w", source, err)
	}
	return &Condition{source: source, program: program}, nil
}

// Evaluate runs the compiled condition against f. An evaluation error
// (e.g. a runtime type mismatch expr's static check didn't catch) is
// treated as "condition did not match" rather than propagated, so one
// bad custom rule never aborts the validation phase.
func (c *Condition) Evaluate(f frame.Finding) bool {
	out, err := expr.Run(c.program, envFromFinding(f))
	if err != nil {
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Source returns the original condition expression text.
func (c *Condition) Source() string {
	return c.source
}
