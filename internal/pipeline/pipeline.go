package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
	"github.com/fyrsmithlabs/pyflight/internal/report"
)

// ErrChecksFailed is returned when at least one executed stage failed. The
// command handler maps it to a non-zero exit code.
var ErrChecksFailed = errors.New("one or more checks failed")

// Orchestrator executes a planned stage list inside a resolved environment.
type Orchestrator struct {
	root   string
	env    pyenv.Env
	runner pyenv.Runner
	log    *zap.Logger
	out    io.Writer
}

// New creates an orchestrator. out receives stage headers and skip notices;
// the external tools inherit the process stdout directly.
func New(root string, env pyenv.Env, runner pyenv.Runner, logger *zap.Logger, out io.Writer) *Orchestrator {
	return &Orchestrator{root: root, env: env, runner: runner, log: logger, out: out}
}

// Run executes the stages in order and returns the run report.
//
// An unresolved environment fails immediately: no stage executes, no result
// is recorded, and the returned error carries the remediation hint. Stage
// failures do not stop the pipeline; they are recorded and execution
// continues so the summary shows every problem.
func (o *Orchestrator) Run(ctx context.Context, stages []Stage) (*report.Run, error) {
	if !o.env.Found() {
		return nil, pyenv.ErrNoEnvironment
	}

	runID := uuid.NewString()
	log := o.log.With(zap.String("run_id", runID))
	log.Debug("starting check pipeline",
		zap.Int("stages", len(stages)),
		zap.String("env", o.env.Dir),
		zap.String("env_source", string(o.env.Source)))

	run := &report.Run{}
	for _, stage := range stages {
		if skipped, reason := stage.Skipped(); skipped {
			report.Notice(o.out, fmt.Sprintf("%s: skipped (%s)", stage.Name, reason))
			run.Record(report.StageResult{
				Name:   stage.Name,
				Status: report.StatusSkipped,
				Detail: reason,
			})
			continue
		}

		report.Header(o.out, stage.Name)
		run.Record(o.execute(ctx, log, stage))
	}
	return run, nil
}

// execute runs one stage and interprets its exit status.
func (o *Orchestrator) execute(ctx context.Context, log *zap.Logger, stage Stage) report.StageResult {
	code, err := o.runner.RunModule(ctx, o.env, o.root, stage.Module, stage.Args)
	if err != nil {
		// The tool never ran: missing from the environment is a stage
		// failure with its own message, not a configuration problem.
		log.Warn("stage tool unavailable",
			zap.String("stage", stage.Name),
			zap.Error(err))
		return report.StageResult{
			Name:     stage.Name,
			Status:   report.StatusFailed,
			Detail:   "tool unavailable: " + err.Error(),
			ExitCode: code,
		}
	}

	if code != 0 {
		log.Debug("stage failed",
			zap.String("stage", stage.Name),
			zap.Int("exit_code", code))
		return report.StageResult{
			Name:     stage.Name,
			Status:   report.StatusFailed,
			Detail:   fmt.Sprintf("exit status %d", code),
			ExitCode: code,
		}
	}

	return report.StageResult{Name: stage.Name, Status: report.StatusPassed}
}
