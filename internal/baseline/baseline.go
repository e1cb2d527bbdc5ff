package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/wardenscan/warden/internal/frame"
	"github.com/wardenscan/warden/output"
)

// findingRef is the minimal shape baseline.json carries per finding —
// enough to compute the (rule_id, normalized_path) suppression key.
type findingRef struct {
	RuleID   string `json:"rule_id"`
	FilePath string `json:"file_path"`
}

type frameResultRef struct {
	Findings []findingRef `json:"findings"`
}

// document is baseline.json's on-disk shape:
// {frame_results: [{findings: [{rule_id, file_path, ...}]}]}.
type document struct {
	FrameResults []frameResultRef `json:"frame_results"`
}

// Baseline is the set of known (rule_id, normalized_relative_path) keys
// a scan should suppress.
type Baseline struct {
	known map[string]struct{}
}

// key builds the suppression key from a rule ID and an
// already-normalized relative path.
func key(ruleID, normalizedPath string) string {
	return ruleID + "\x00" + normalizedPath
}

// Load reads .warden/baseline.json under projectRoot. A missing file is
// an empty baseline, not an error. A corrupted file is logged as a
// warning and treated as an empty baseline — per spec, baseline
// corruption must never crash the scan.
func Load(projectRoot string, logger *output.Logger) Baseline {
	path := filepath.Join(projectRoot, ".warden", "baseline.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warning("baseline: failed to read %s: %v", path, err)
		}
		return Baseline{known: make(map[string]struct{})}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		if logger != nil {
			logger.Warning("baseline: %s is corrupted, ignoring: %v", path, err)
		}
		return Baseline{known: make(map[string]struct{})}
	}

	known := make(map[string]struct{})
	for _, fr := range doc.FrameResults {
		for _, f := range fr.Findings {
			normalized := NormalizePath(projectRoot, f.FilePath)
			known[key(f.RuleID, normalized)] = struct{}{}
		}
	}
	return Baseline{known: known}
}

// NormalizePath resolves path to be relative to projectRoot, handling
// absolute, relative, and un-resolvable paths without ever panicking or
// returning an error: an un-resolvable path is returned cleaned but
// otherwise unchanged, so it simply fails to match any baseline key
// rather than aborting the scan.
func NormalizePath(projectRoot, path string) string {
	if path == "" {
		return path
	}
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(projectRoot, path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

// Matches reports whether a finding with the given rule ID and file
// path (already relative-or-absolute, NOT pre-normalized) is present in
// the baseline.
func (b Baseline) Matches(projectRoot string, f frame.Finding) bool {
	normalized := NormalizePath(projectRoot, f.FilePath)
	_, ok := b.known[key(f.RuleID, normalized)]
	return ok
}

// Subtract removes findings present in the baseline from each frame
// result's Findings list, recomputing IssuesFound and flipping Status
// from failed to passed when the subtraction empties a previously
// failing frame. Frames with no baseline matches are returned
// unchanged.
func (b Baseline) Subtract(projectRoot string, results map[string]frame.FrameResult) map[string]frame.FrameResult {
	out := make(map[string]frame.FrameResult, len(results))
	for id, result := range results {
		kept := make([]frame.Finding, 0, len(result.Findings))
		for _, f := range result.Findings {
			if !b.Matches(projectRoot, f) {
				kept = append(kept, f)
			}
		}

		result.Findings = kept
		result.IssuesFound = len(kept)

		if result.Status == frame.StatusFailed && len(kept) == 0 {
			result.Status = frame.StatusPassed
			result.IsBlocker = false
		}

		out[id] = result
	}
	return out
}
