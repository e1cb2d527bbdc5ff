package taint

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed packs
var packagedPacks embed.FS

// pack is the YAML shape of one catalog file, packaged or project-level.
// Grounded on ruleset.Bundle's decode style (plain field-name YAML tags,
// no custom unmarshaler).
type pack struct {
	Language    string              `yaml:"language"`
	Sources     []string            `yaml:"sources"`
	Sinks       map[string]string   `yaml:"sinks"`
	Sanitizers  map[string][]string `yaml:"sanitizers"`
	AssignSinks []string            `yaml:"assign_sinks"`
}

// TaintCatalog is the merged view of every packaged YAML pack plus the
// project's optional .warden/taint_catalog.yaml override. Merges are
// unions: a project override can add sources, sinks, and sanitizers but
// can never remove a packaged entry.
type TaintCatalog struct {
	Sources     map[string][]string
	Sinks       map[string]string
	Sanitizers  map[string][]string
	AssignSinks []string
	Warnings    []string
}

// LoadCatalog loads every packaged pack under packs/<language>/*.yaml and
// unions in projectRoot/.warden/taint_catalog.yaml when present. A
// missing override file is not an error. A malformed file, packaged or
// project, is skipped with a warning recorded on the returned catalog;
// sibling files still load.
func LoadCatalog(projectRoot string) (*TaintCatalog, error) {
	cat := &TaintCatalog{
		Sources:    make(map[string][]string),
		Sinks:      make(map[string]string),
		Sanitizers: make(map[string][]string),
	}

	paths, err := packedYAMLPaths()
	if err != nil {
		return nil, fmt.Errorf("list packaged taint packs: %w", err)
	}
	if len(paths) == 0 {
		cat.Warnings = append(cat.Warnings, "no packaged taint catalog packs found; falling back to hardcoded stdlib constants")
	}
	for _, p := range paths {
		data, err := packagedPacks.ReadFile(p)
		if err != nil {
			cat.Warnings = append(cat.Warnings, fmt.Sprintf("read packaged pack %s: %v", p, err))
			continue
		}
		var parsed pack
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			cat.Warnings = append(cat.Warnings, fmt.Sprintf("malformed packaged pack %s: %v", p, err))
			continue
		}
		cat.merge(&parsed)
	}

	overridePath := filepath.Join(projectRoot, ".warden", "taint_catalog.yaml")
	if data, err := os.ReadFile(overridePath); err == nil {
		var parsed pack
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			cat.Warnings = append(cat.Warnings, fmt.Sprintf("malformed project override %s: %v", overridePath, err))
		} else {
			cat.merge(&parsed)
		}
	}

	return cat, nil
}

func packedYAMLPaths() ([]string, error) {
	var paths []string
	err := fs.WalkDir(packagedPacks, "packs", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

func (c *TaintCatalog) merge(p *pack) {
	if p.Language != "" && len(p.Sources) > 0 {
		c.Sources[p.Language] = unionStrings(c.Sources[p.Language], p.Sources)
	}
	for pattern, sinkType := range p.Sinks {
		if _, exists := c.Sinks[pattern]; !exists {
			c.Sinks[pattern] = sinkType
		}
	}
	for sinkType, patterns := range p.Sanitizers {
		c.Sanitizers[sinkType] = unionStrings(c.Sanitizers[sinkType], patterns)
	}
	c.AssignSinks = unionStrings(c.AssignSinks, p.AssignSinks)
}

func unionStrings(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}

// SourcesFor returns the known source patterns for a language, or nil.
func (c *TaintCatalog) SourcesFor(lang Language) []string {
	return c.Sources[string(lang)]
}

// SinkPatterns returns every known sink call-target pattern across all
// languages, sorted for determinism.
func (c *TaintCatalog) SinkPatterns() []string {
	patterns := make([]string, 0, len(c.Sinks))
	for pattern := range c.Sinks {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// SinkType returns the sink type for a known pattern.
func (c *TaintCatalog) SinkType(pattern string) (string, bool) {
	t, ok := c.Sinks[pattern]
	return t, ok
}

// SanitizersFor returns the sanitizer patterns that weaken a finding
// against the given sink type.
func (c *TaintCatalog) SanitizersFor(sinkType string) []string {
	return c.Sanitizers[sinkType]
}

// AllSanitizerPatterns flattens every sanitizer pattern across all sink
// types into one deduplicated slice, for analyzers (like the existing
// Python engine) that test a flat sanitizer list rather than a
// sink-type-scoped one.
func (c *TaintCatalog) AllSanitizerPatterns() []string {
	var all []string
	for _, patterns := range c.Sanitizers {
		all = unionStrings(all, patterns)
	}
	sort.Strings(all)
	return all
}

// IsAssignSink reports whether name (e.g. "innerHTML") is a known
// property-assignment sink.
func (c *TaintCatalog) IsAssignSink(name string) bool {
	for _, s := range c.AssignSinks {
		if s == name {
			return true
		}
	}
	return false
}
