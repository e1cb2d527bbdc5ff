package rules

import "strings"

// SuppressionRule is one entry from suppression.yaml's globalRules[]: a
// narrower, non-expr matcher ported directly from the original
// pipeline's false-positive filter — an issue-type/file-context pair,
// or a bare substring matched against the finding's rule ID or message.
type SuppressionRule struct {
	IssueType   string `yaml:"issue_type"`
	FileContext string `yaml:"file_context"`
	Contains    string `yaml:"contains"`
}

// SuppressionConfig is suppression.yaml's top-level shape.
type SuppressionConfig struct {
	Enabled      bool              `yaml:"enabled"`
	GlobalRules  []SuppressionRule `yaml:"globalRules"`
	IgnoredFiles []string          `yaml:"ignoredFiles"`
}

// FindingDescriptor is the attribute set suppression rules match
// against — narrower than FindingEnv because suppression predates the
// expr-based custom-rule condition and only ever compared these fields.
type FindingDescriptor struct {
	RuleID      string
	Message     string
	FileContext string
}

// IsSuppressed reports whether f should be dropped as a false positive,
// porting frame_executor.py's _is_false_positive: a rule matches if its
// issue_type/file_context pair matches exactly, or if its Contains
// substring is found in the rule ID or message.
func (c SuppressionConfig) IsSuppressed(f FindingDescriptor) bool {
	if !c.Enabled || len(c.GlobalRules) == 0 {
		return false
	}
	for _, rule := range c.GlobalRules {
		if rule.IssueType != "" || rule.FileContext != "" {
			if rule.IssueType == f.RuleID && rule.FileContext == f.FileContext {
				return true
			}
			continue
		}
		if rule.Contains != "" && (f.RuleID == rule.Contains || strings.Contains(f.Message, rule.Contains)) {
			return true
		}
	}
	return false
}

// IsFileIgnored reports whether path matches one of IgnoredFiles,
// treating each entry as a substring match on the path — the same
// loose matching the original's globalRules.contains branch uses.
func (c SuppressionConfig) IsFileIgnored(path string) bool {
	for _, ignored := range c.IgnoredFiles {
		if strings.Contains(path, ignored) {
			return true
		}
	}
	return false
}

// NewFindingDescriptor builds a FindingDescriptor from the fields a
// caller has available, keeping suppression matching decoupled from
// frame.Finding's full shape.
func NewFindingDescriptor(ruleID, message, fileContext string) FindingDescriptor {
	return FindingDescriptor{RuleID: ruleID, Message: message, FileContext: fileContext}
}
