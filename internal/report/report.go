// Package report records per-stage outcomes and renders the run summary.
//
// Both orchestrators (check pipeline and security scan) produce a Run; the
// command handlers convert its aggregate outcome into the process exit code.
package report

// Status is the outcome of a single stage.
type Status int

const (
	// StatusPassed means the external command exited zero.
	StatusPassed Status = iota
	// StatusFailed means the external command exited non-zero or could
	// not start.
	StatusFailed
	// StatusSkipped means the stage's applicability predicate ruled it
	// out; it does not count toward the aggregate result.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// StageResult is the recorded outcome of one stage. Results are never
// dropped; every planned stage appears in the summary.
type StageResult struct {
	// Name is the stage name as shown in headers and the summary.
	Name string
	// Status is the outcome.
	Status Status
	// Detail carries the skip reason or failure context, if any.
	Detail string
	// ExitCode is the external command's exit status; zero for skipped
	// stages.
	ExitCode int
}

// Run is the ordered record of one orchestrator execution.
type Run struct {
	results []StageResult
}

// Record appends a stage result.
func (r *Run) Record(res StageResult) {
	r.results = append(r.results, res)
}

// Results returns the recorded stage results in execution order.
func (r *Run) Results() []StageResult {
	return r.results
}

// OK reports aggregate success: every executed (non-skipped) stage passed.
// A run where everything was skipped is still a success.
func (r *Run) OK() bool {
	for _, res := range r.results {
		if res.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Executed counts the stages that actually ran.
func (r *Run) Executed() int {
	n := 0
	for _, res := range r.results {
		if res.Status != StatusSkipped {
			n++
		}
	}
	return n
}
