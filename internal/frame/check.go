package frame

import (
	"fmt"
	"sort"
	"sync"
)

// CheckResult is one check's verdict, rolled up into its owning frame's
// FrameResult by the frame runner.
type CheckResult struct {
	CheckID  string
	Findings []Finding
	Err      error
}

// Check is a narrow rule within a frame — SQL-injection pattern,
// hardcoded secret, hardcoded password, and so on. Checks are values
// behind this interface rather than subclasses, registered at factory
// time through CheckRegistry.
type Check interface {
	ID() string
	Name() string
	Run(file CodeFile) CheckResult
}

// CheckRegistry holds the ordered set of checks a frame runs per file.
// Registration order is iteration order, satisfying the deterministic
// check-execution invariant.
type CheckRegistry struct {
	mu     sync.RWMutex
	order  []string
	checks map[string]Check
}

// NewCheckRegistry returns an empty registry.
func NewCheckRegistry() *CheckRegistry {
	return &CheckRegistry{checks: make(map[string]Check)}
}

// Register adds check to the registry. Registering a check under an ID
// already present replaces it in place, keeping its original position in
// iteration order so re-registration during tests doesn't reshuffle
// determinism guarantees.
func (r *CheckRegistry) Register(check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := check.ID()
	if _, exists := r.checks[id]; !exists {
		r.order = append(r.order, id)
	}
	r.checks[id] = check
}

// All returns the registered checks in registration order.
func (r *CheckRegistry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Check, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.checks[id])
	}
	return out
}

// RunAll runs every registered check against file, isolating panics and
// errors so one broken check never stops its siblings. A recovered panic
// is reported as a CheckResult.Err rather than propagated.
func (r *CheckRegistry) RunAll(file CodeFile) []CheckResult {
	checks := r.All()
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = runCheckIsolated(check, file)
	}
	return results
}

func runCheckIsolated(check Check, file CodeFile) (result CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = CheckResult{CheckID: check.ID(), Err: fmt.Errorf("check %s panicked: %v", check.ID(), rec)}
		}
	}()
	return check.Run(file)
}

// SortFindings orders findings by (rule_id, location) for the
// aggregated-findings test-stability invariant under parallel frame
// execution.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].RuleID != findings[j].RuleID {
			return findings[i].RuleID < findings[j].RuleID
		}
		return findings[i].Location < findings[j].Location
	})
}
