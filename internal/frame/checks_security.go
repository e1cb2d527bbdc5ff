package frame

import (
	"fmt"
	"regexp"
	"strings"
)

// The four built-in security pattern checks, grounded on
// original_source/.../security/_internal/*.py (sql_injection_check.py,
// xss_check.py, secrets_check.py, hardcoded_password_check.py): one
// small Check per vulnerability class, each scanning source line by
// line with a handful of regexes rather than a parser, matching the
// line-oriented idiom internal/taint's RegexAnalyzer already uses for
// the same four non-Python languages.

// SQLInjectionCheck flags string-built SQL statements: f-strings,
// %-formatting, or "+" concatenation feeding into an execute-like call.
type SQLInjectionCheck struct{}

func (SQLInjectionCheck) ID() string   { return "sql-injection" }
func (SQLInjectionCheck) Name() string { return "SQL Injection" }

var sqlConcatRe = regexp.MustCompile(`(?i)(execute|executemany|raw|query)\s*\(\s*(f["'].*\{|["'].*["']\s*%|["'].*["']\s*\+|["'].*\{\d*\}.*["']\.format)`)

func (c SQLInjectionCheck) Run(file CodeFile) CheckResult {
	var findings []Finding
	for i, line := range strings.Split(string(file.SourceCode), "\n") {
		if sqlConcatRe.MatchString(line) {
			findings = append(findings, Finding{
				RuleID:   c.ID(),
				Severity: SeverityHigh,
				Message:  "[SQL Injection] SQL query built via string interpolation/concatenation",
				Location: fmt.Sprintf("%s:%d", file.Path, i+1),
				Detail:   "Use parameterized queries (placeholders) instead of building SQL strings",
				FilePath: file.Path,
			})
		}
	}
	return CheckResult{CheckID: c.ID(), Findings: findings}
}

// XSSCheck flags unescaped interpolation into HTML-sink contexts:
// innerHTML/outerHTML assignment, document.write, dangerouslySetInnerHTML,
// and template engines rendering raw user input with `|safe`/`mark_safe`.
type XSSCheck struct{}

func (XSSCheck) ID() string   { return "xss" }
func (XSSCheck) Name() string { return "Cross-Site Scripting" }

var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.innerHTML\s*=`),
	regexp.MustCompile(`(?i)\.outerHTML\s*=`),
	regexp.MustCompile(`document\.write\s*\(`),
	regexp.MustCompile(`dangerouslySetInnerHTML`),
	regexp.MustCompile(`\|\s*safe\b`),
	regexp.MustCompile(`mark_safe\s*\(`),
}

func (c XSSCheck) Run(file CodeFile) CheckResult {
	var findings []Finding
	for i, line := range strings.Split(string(file.SourceCode), "\n") {
		for _, re := range xssPatterns {
			if re.MatchString(line) {
				findings = append(findings, Finding{
					RuleID:   c.ID(),
					Severity: SeverityHigh,
					Message:  "[Cross-Site Scripting] unescaped content written to an HTML sink",
					Location: fmt.Sprintf("%s:%d", file.Path, i+1),
					Detail:   "Escape or sanitize the value before writing it into the DOM/template",
					FilePath: file.Path,
				})
				break
			}
		}
	}
	return CheckResult{CheckID: c.ID(), Findings: findings}
}

// SecretsCheck flags high-entropy-looking credential assignments:
// API keys, tokens, and known provider key prefixes (AWS, GitHub,
// Slack, Stripe) assigned as string literals.
type SecretsCheck struct{}

func (SecretsCheck) ID() string   { return "secrets" }
func (SecretsCheck) Name() string { return "Hardcoded Secrets" }

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token|access[_-]?key)\s*[:=]\s*["'][A-Za-z0-9_\-]{16,}["']`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk_live_[A-Za-z0-9]{24,}`),
}

func (c SecretsCheck) Run(file CodeFile) CheckResult {
	var findings []Finding
	for i, line := range strings.Split(string(file.SourceCode), "\n") {
		for _, re := range secretPatterns {
			if re.MatchString(line) {
				findings = append(findings, Finding{
					RuleID:   c.ID(),
					Severity: SeverityCritical,
					Message:  "[Hardcoded Secrets] credential-shaped literal committed to source",
					Location: fmt.Sprintf("%s:%d", file.Path, i+1),
					Detail:   "Move this value to a secret store or environment variable",
					FilePath: file.Path,
				})
				break
			}
		}
	}
	return CheckResult{CheckID: c.ID(), Findings: findings}
}

// HardcodedPasswordCheck flags literal password/credential assignment
// to a variable whose name signals an auth secret. Narrower than
// SecretsCheck: it matches on the variable name, not the value shape,
// since passwords don't follow a fixed format the way provider keys do.
type HardcodedPasswordCheck struct{}

func (HardcodedPasswordCheck) ID() string   { return "hardcoded-password" }
func (HardcodedPasswordCheck) Name() string { return "Hardcoded Password" }

var hardcodedPasswordRe = regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[:=]\s*["'][^"'{}$]+["']`)

func (c HardcodedPasswordCheck) Run(file CodeFile) CheckResult {
	var findings []Finding
	for i, line := range strings.Split(string(file.SourceCode), "\n") {
		if hardcodedPasswordRe.MatchString(line) {
			findings = append(findings, Finding{
				RuleID:   c.ID(),
				Severity: SeverityHigh,
				Message:  "[Hardcoded Password] literal password assigned in source",
				Location: fmt.Sprintf("%s:%d", file.Path, i+1),
				Detail:   "Read the credential from configuration or a secret store instead",
				FilePath: file.Path,
			})
		}
	}
	return CheckResult{CheckID: c.ID(), Findings: findings}
}

// RegisterBuiltinChecks registers the four reference pattern checks on
// registry, in the fixed order spec.md names them.
func RegisterBuiltinChecks(registry *CheckRegistry) {
	registry.Register(SQLInjectionCheck{})
	registry.Register(XSSCheck{})
	registry.Register(SecretsCheck{})
	registry.Register(HardcodedPasswordCheck{})
}
