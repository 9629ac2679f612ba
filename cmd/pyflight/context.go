package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pyflight/internal/config"
	"github.com/fyrsmithlabs/pyflight/internal/logging"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
)

// projectContext carries everything a subcommand needs for one invocation:
// the project root, the merged configuration, the resolved environment, and
// the logger. Built once per command run and never mutated afterward.
type projectContext struct {
	Root   string
	Config config.Config
	Env    pyenv.Env
	Log    *zap.Logger
}

// newProjectContext resolves the working directory, loads configuration, and
// resolves the Python environment. A missing environment is not an error
// here; commands that need one check Env.Found themselves.
func newProjectContext() (*projectContext, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg := config.Load(root)
	env := pyenv.NewResolver(log).Resolve(root, cfg)

	return &projectContext{
		Root:   root,
		Config: cfg,
		Env:    env,
		Log:    log,
	}, nil
}

func newLogger() (*zap.Logger, error) {
	cfg := logging.Config{Level: logLevel, Format: logFormat}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return logging.NewLogger(cfg)
}
