// Package config loads and normalizes [tool.pyflight] settings from
// pyproject.toml.
//
// Normalization never fails: malformed or missing values degrade to the
// documented defaults so a broken pyproject.toml can't abort a run.
package config

import (
	"strconv"
	"strings"
)

// Accepted values for the tool-selection fields. Matching is case-sensitive;
// "Ruff" is not a formatter.
const (
	FormatterRuff  = "ruff"
	FormatterBlack = "black"

	TypecheckerMypy    = "mypy"
	TypecheckerPyright = "pyright"
)

// DefaultEnvironmentPath is where init creates the venv and where resolution
// looks first when nothing is configured.
const DefaultEnvironmentPath = ".venv"

// DefaultCoverageMin is the coverage threshold used when coverage_min is
// missing or out of range.
const DefaultCoverageMin = 85

// Config is a fully-normalized [tool.pyflight] configuration. Every field
// holds a valid value; consumers never see raw input.
type Config struct {
	// EnvironmentPath is the configured venv location, relative to the
	// project root unless absolute.
	EnvironmentPath string `koanf:"environment_path"`
	// EnvironmentPathSet records whether environment_path was explicitly
	// configured. Resolution only honors the configured-path rule when the
	// user actually set one.
	EnvironmentPathSet bool `koanf:"-"`
	// Formatter is "ruff" or "black".
	Formatter string `koanf:"formatter"`
	// Typechecker is "mypy" or "pyright".
	Typechecker string `koanf:"typechecker"`
	// CoverageMin is the pytest-cov fail-under threshold, 0-100 inclusive.
	CoverageMin int `koanf:"coverage_min"`
	// CoverageBranch enables branch coverage measurement.
	CoverageBranch bool `koanf:"coverage_branch"`
	// RunTests enables the test stage.
	RunTests bool `koanf:"run_tests"`
}

// Default returns the configuration used when no settings are present.
func Default() Config {
	return Config{
		EnvironmentPath: DefaultEnvironmentPath,
		Formatter:       FormatterRuff,
		Typechecker:     TypecheckerMypy,
		CoverageMin:     DefaultCoverageMin,
		CoverageBranch:  true,
		RunTests:        true,
	}
}

// parseChoice validates a string selection against the allowed values.
// Surrounding whitespace is trimmed; case is significant.
func parseChoice(value any, fallback string, allowed ...string) string {
	s, ok := value.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return a
		}
	}
	return fallback
}

// parseInt parses an integer within [min, max] inclusive. TOML yields int64,
// environment variables yield strings; both are accepted. Out-of-range and
// non-numeric values fall back.
func parseInt(value any, fallback, min, max int) int {
	var parsed int
	switch v := value.(type) {
	case bool:
		return fallback
	case int:
		parsed = v
	case int64:
		parsed = int(v)
	case float64:
		if v != float64(int(v)) {
			return fallback
		}
		parsed = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		parsed = n
	default:
		return fallback
	}

	if parsed < min || parsed > max {
		return fallback
	}
	return parsed
}

// parseBool parses a permissive boolean: native bools, 0/1, and the usual
// string spellings.
func parseBool(value any, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		if v == 0 || v == 1 {
			return v == 1
		}
	case int64:
		if v == 0 || v == 1 {
			return v == 1
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}

// parsePath accepts any non-blank string, falling back otherwise.
func parsePath(value any, fallback string) string {
	s, ok := value.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
