package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix maps PYFLIGHT_COVERAGE_MIN and friends onto [tool.pyflight] keys.
const envPrefix = "PYFLIGHT_"

// Load returns the normalized configuration for a project.
//
// Configuration precedence (highest to lowest):
//  1. PYFLIGHT_* environment variables
//  2. [tool.pyflight] in <root>/pyproject.toml
//  3. Defaults
//
// Load never returns an error: a missing pyproject.toml, unparseable TOML, or
// a malformed [tool.pyflight] table all degrade to defaults field by field.
func Load(root string) Config {
	k := koanf.New(".")

	if raw := readToolTable(filepath.Join(root, "pyproject.toml")); raw != nil {
		// confmap load of a flat map cannot fail.
		_ = k.Load(confmap.Provider(raw, "."), nil)
	}

	_ = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)

	return Normalize(rawMap(k))
}

// Normalize produces a valid Config from raw settings. Unknown keys are
// ignored; invalid values are replaced with defaults, never left raw.
func Normalize(raw map[string]any) Config {
	base := Default()
	if raw == nil {
		return base
	}
	return Config{
		EnvironmentPath:    parsePath(raw["environment_path"], base.EnvironmentPath),
		EnvironmentPathSet: parsePath(raw["environment_path"], "") != "",
		Formatter:          parseChoice(raw["formatter"], base.Formatter, FormatterRuff, FormatterBlack),
		Typechecker:        parseChoice(raw["typechecker"], base.Typechecker, TypecheckerMypy, TypecheckerPyright),
		CoverageMin:        parseInt(raw["coverage_min"], base.CoverageMin, 0, 100),
		CoverageBranch:     parseBool(raw["coverage_branch"], base.CoverageBranch),
		RunTests:           parseBool(raw["run_tests"], base.RunTests),
	}
}

// readToolTable extracts [tool.pyflight] from pyproject.toml as a raw map.
// Returns nil when the file or table is absent or malformed.
func readToolTable(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	tool, ok := doc["tool"].(map[string]any)
	if !ok {
		return nil
	}
	settings, ok := tool["pyflight"].(map[string]any)
	if !ok {
		return nil
	}
	return settings
}

// rawMap flattens the koanf instance back into the raw-settings shape
// Normalize consumes.
func rawMap(k *koanf.Koanf) map[string]any {
	raw := make(map[string]any)
	for _, key := range k.Keys() {
		raw[key] = k.Get(key)
	}
	return raw
}
