// Package baseline implements the post-processor's baseline-subtraction
// step: loading .warden/baseline.json and dropping current findings that
// match a previously-known (rule_id, normalized_relative_path) pair. A
// frame that drops from failed to zero findings as a result is flipped
// to passed.
package baseline
