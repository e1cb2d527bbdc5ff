// Package config decodes .warden/config.yaml into a Config and applies
// environment variable overrides on top of it, following the precedence
// the teacher's analytics package already uses for its own opt-out
// variable: YAML first, then env, with env always winning.
package config
