package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunOK(t *testing.T) {
	tests := []struct {
		name    string
		results []StageResult
		want    bool
	}{
		{name: "empty run passes", results: nil, want: true},
		{
			name: "all passed",
			results: []StageResult{
				{Name: "lint", Status: StatusPassed},
				{Name: "typecheck", Status: StatusPassed},
			},
			want: true,
		},
		{
			name: "skips do not count",
			results: []StageResult{
				{Name: "lint", Status: StatusSkipped},
				{Name: "test", Status: StatusPassed},
			},
			want: true,
		},
		{
			name: "all skipped still passes",
			results: []StageResult{
				{Name: "lint", Status: StatusSkipped},
			},
			want: true,
		},
		{
			name: "one failure fails the run",
			results: []StageResult{
				{Name: "lint", Status: StatusPassed},
				{Name: "typecheck", Status: StatusFailed, ExitCode: 1},
				{Name: "test", Status: StatusPassed},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var run Run
			for _, res := range tt.results {
				run.Record(res)
			}
			assert.Equal(t, tt.want, run.OK())
			assert.Len(t, run.Results(), len(tt.results))
		})
	}
}

func TestRunExecuted(t *testing.T) {
	var run Run
	run.Record(StageResult{Name: "lint", Status: StatusPassed})
	run.Record(StageResult{Name: "format", Status: StatusSkipped})
	run.Record(StageResult{Name: "test", Status: StatusFailed})
	assert.Equal(t, 2, run.Executed())
}

func TestSummaryListsEveryStage(t *testing.T) {
	var run Run
	run.Record(StageResult{Name: "lint", Status: StatusPassed})
	run.Record(StageResult{Name: "format", Status: StatusSkipped, Detail: "no changed Python files"})
	run.Record(StageResult{Name: "test", Status: StatusFailed, ExitCode: 2})

	var buf bytes.Buffer
	run.Summary(&buf, "check summary")
	out := buf.String()

	assert.Contains(t, out, "check summary")
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "format")
	assert.Contains(t, out, "no changed Python files")
	assert.Contains(t, out, "test")
	assert.Contains(t, out, "checks failed")

	// Statuses must be visually distinguishable.
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "SKIP")
}

func TestSummaryVerdictPass(t *testing.T) {
	var run Run
	run.Record(StageResult{Name: "lint", Status: StatusPassed})

	var buf bytes.Buffer
	run.Summary(&buf, "check summary")
	assert.True(t, strings.Contains(buf.String(), "all checks passed"))
}
