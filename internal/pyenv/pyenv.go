// Package pyenv resolves the isolated Python environment a run executes in.
//
// Resolution applies an ordered list of strategies, first match wins:
//
//  1. The configured environment_path, when it exists and holds an
//     interpreter.
//  2. The active virtual environment (VIRTUAL_ENV), when the invocation is
//     already running inside one.
//  3. Project-local fallbacks: .venv, venv, env.
//
// Nothing resolving is a normal result, not an error; callers decide whether
// a missing environment is fatal for their command.
package pyenv

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pyflight/internal/config"
)

// ErrNoEnvironment indicates no usable environment was found. Commands that
// need an environment surface it with a remediation hint.
var ErrNoEnvironment = errors.New("no python environment found (run: pyflight init)")

// Source tags which resolution rule produced an environment.
type Source string

const (
	// SourceConfigured means the configured environment_path validated.
	SourceConfigured Source = "configured"
	// SourceActive means the invocation was already inside a virtualenv.
	SourceActive Source = "active"
	// SourceNone means nothing resolved.
	SourceNone Source = "none"
)

// fallbackDirs are probed in order when neither the configured path nor an
// active environment validates.
var fallbackDirs = []string{".venv", "venv", "env"}

// fallbackSource tags a project-local fallback hit, e.g. "fallback:.venv".
func fallbackSource(dir string) Source {
	return Source("fallback:" + dir)
}

// Env describes a resolved environment. The zero value means unresolved.
type Env struct {
	// Dir is the absolute environment root.
	Dir string
	// Source is the resolution rule that produced this environment.
	Source Source
}

// Found reports whether resolution produced a usable environment.
func (e Env) Found() bool {
	return e.Source != "" && e.Source != SourceNone && e.Dir != ""
}

// Python returns the interpreter path inside the environment.
func (e Env) Python() string {
	return interpreterIn(e.Dir)
}

// Tool returns the path of a tool entry script inside the environment, used
// only for availability probes; execution always goes through the
// interpreter.
func (e Env) Tool(name string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Dir, "Scripts", name+".exe")
	}
	return filepath.Join(e.Dir, "bin", name)
}

// interpreterIn returns the conventional interpreter location for the host
// OS, accepting the other convention when only it exists. Some tools create
// Scripts/ layouts on POSIX hosts under emulation.
func interpreterIn(dir string) string {
	windowsPython := filepath.Join(dir, "Scripts", "python.exe")
	posixPython := filepath.Join(dir, "bin", "python")

	preferred, alternate := posixPython, windowsPython
	if runtime.GOOS == "windows" {
		preferred, alternate = windowsPython, posixPython
	}

	if fileExists(preferred) || !fileExists(alternate) {
		return preferred
	}
	return alternate
}

// validates reports whether dir looks like an isolated-environment root.
func validates(dir string) bool {
	return dir != "" && fileExists(interpreterIn(dir))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolver locates the environment for a project.
type Resolver struct {
	log *zap.Logger
	// lookupEnv is swappable for tests.
	lookupEnv func(string) (string, bool)
}

// NewResolver creates a resolver. logger may be zap.NewNop() in tests.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{log: logger, lookupEnv: os.LookupEnv}
}

// strategy is one resolution rule: project root + configuration in, optional
// environment out.
type strategy func(root string, cfg config.Config) (Env, bool)

// Resolve applies the resolution rules in order and returns the first
// environment that validates, or an Env with SourceNone.
func (r *Resolver) Resolve(root string, cfg config.Config) Env {
	strategies := []strategy{
		r.fromConfigured,
		r.fromActive,
		r.fromFallbacks,
	}

	for _, s := range strategies {
		if env, ok := s(root, cfg); ok {
			r.log.Debug("resolved python environment",
				zap.String("dir", env.Dir),
				zap.String("source", string(env.Source)))
			return env
		}
	}
	return Env{Source: SourceNone}
}

// fromConfigured honors an explicitly configured environment_path.
func (r *Resolver) fromConfigured(root string, cfg config.Config) (Env, bool) {
	if !cfg.EnvironmentPathSet {
		return Env{}, false
	}

	dir := cfg.EnvironmentPath
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)
	if !validates(dir) {
		return Env{}, false
	}

	if outsideRoot(root, dir) {
		// Honored anyway: explicit configuration wins, but sharing an
		// environment across projects invites cross-contamination.
		r.log.Warn("configured environment lies outside the project root",
			zap.String("environment", dir),
			zap.String("project", root))
	}
	return Env{Dir: dir, Source: SourceConfigured}, true
}

// fromActive uses the virtualenv this process is already running inside.
// Activation scripts export VIRTUAL_ENV; that is the observable equivalent of
// an interpreter prefix check.
func (r *Resolver) fromActive(string, config.Config) (Env, bool) {
	active, ok := r.lookupEnv("VIRTUAL_ENV")
	if !ok || strings.TrimSpace(active) == "" {
		return Env{}, false
	}
	dir := filepath.Clean(active)
	if !validates(dir) {
		return Env{}, false
	}
	return Env{Dir: dir, Source: SourceActive}, true
}

// fromFallbacks probes the conventional project-local directories in order.
func (r *Resolver) fromFallbacks(root string, _ config.Config) (Env, bool) {
	for _, name := range fallbackDirs {
		dir := filepath.Join(root, name)
		if validates(dir) {
			return Env{Dir: dir, Source: fallbackSource(name)}, true
		}
	}
	return Env{}, false
}

// outsideRoot reports whether dir is not contained in root.
func outsideRoot(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
