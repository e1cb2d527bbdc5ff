// Package rules evaluates the two kinds of user-authored conditions the
// validation phase consults: custom rule conditions (rules/*.yaml,
// expression predicates over a finding) and suppression rules
// (suppression.yaml, the false-positive filter applied to
// context.findings before they're reported).
package rules
