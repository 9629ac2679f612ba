package gitscope

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGit serves canned outputs keyed by the joined argument list and counts
// how often each query runs.
type fakeGit struct {
	outputs map[string]string
	errs    map[string]error
	calls   map[string]int
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeGit) Output(_ context.Context, _ string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls[key]++
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return "", errors.New("unexpected git invocation: " + key)
}

func testScope(t *testing.T, root string) (*Scope, *fakeGit) {
	t.Helper()
	fake := newFakeGit()
	s := New(root, zap.NewNop())
	s.git = fake
	// RepoAvailable normally consults go-git; fix it for runner tests.
	s.repoChecked = true
	s.repoOK = true
	return s, fake
}

func TestRepoAvailable(t *testing.T) {
	root := t.TempDir()
	s := New(root, zap.NewNop())
	assert.False(t, s.RepoAvailable())

	repoRoot := t.TempDir()
	_, err := git.PlainInit(repoRoot, false)
	require.NoError(t, err)
	s = New(repoRoot, zap.NewNop())
	assert.True(t, s.RepoAvailable())
}

func TestRepoAvailableMemoized(t *testing.T) {
	root := t.TempDir()
	s := New(root, zap.NewNop())
	require.False(t, s.RepoAvailable())

	// A repository created after the first check is not observed; the
	// answer is cached per invocation.
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)
	assert.False(t, s.RepoAvailable())
}

func TestSelectFullProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".venv", "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "__pycache__"), 0o755))
	for _, f := range []string{
		"main.py",
		"pkg/util.py",
		"pkg/util.pyi",
		"notes.txt",
		".venv/lib/vendored.py",
		"__pycache__/main.cpython-312.pyc",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte(""), 0o644))
	}

	s, _ := testScope(t, root)
	sel := s.Select(context.Background(), false, false)

	assert.False(t, sel.Scoped)
	assert.Equal(t, []string{"main.py", "pkg/util.py", "pkg/util.pyi"}, sel.Files)
}

func TestSelectChanged(t *testing.T) {
	s, fake := testScope(t, t.TempDir())
	fake.outputs["diff --name-only HEAD"] = "app.py\nREADME.md\napp.py\n"
	fake.outputs["ls-files --others --exclude-standard"] = "new_mod.py\n"

	sel := s.Select(context.Background(), true, false)

	assert.True(t, sel.Scoped)
	assert.Equal(t, []string{"app.py", "new_mod.py"}, sel.Files)
}

func TestSelectChangedUnbornHeadFallback(t *testing.T) {
	s, fake := testScope(t, t.TempDir())
	fake.errs["diff --name-only HEAD"] = errors.New("unknown revision HEAD")
	fake.outputs["diff --name-only"] = "first.py\n"
	fake.outputs["ls-files --others --exclude-standard"] = ""

	sel := s.Select(context.Background(), true, false)
	assert.Equal(t, []string{"first.py"}, sel.Files)
}

func TestSelectStaged(t *testing.T) {
	s, fake := testScope(t, t.TempDir())
	fake.outputs["diff --name-only --cached"] = "staged.py\ndocs/readme.md\n"

	sel := s.Select(context.Background(), true, true)

	assert.True(t, sel.Scoped)
	assert.Equal(t, []string{"staged.py"}, sel.Files)
	assert.Zero(t, fake.calls["diff --name-only HEAD"])
}

func TestSelectStagedWithoutChangedIsNoop(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "solo.py"), []byte(""), 0o644))

	s, fake := testScope(t, root)
	sel := s.Select(context.Background(), false, true)

	assert.False(t, sel.Scoped)
	assert.Equal(t, []string{"solo.py"}, sel.Files)
	assert.Empty(t, fake.calls)
}

func TestSelectNoRepositoryDegrades(t *testing.T) {
	s, fake := testScope(t, t.TempDir())
	s.repoOK = false

	sel := s.Select(context.Background(), true, false)

	assert.True(t, sel.Scoped)
	assert.True(t, sel.Empty())
	assert.Empty(t, fake.calls)
}

func TestSelectQueryFailureDegrades(t *testing.T) {
	s, fake := testScope(t, t.TempDir())
	fake.errs["diff --name-only --cached"] = context.DeadlineExceeded

	sel := s.Select(context.Background(), true, true)

	assert.True(t, sel.Scoped)
	assert.True(t, sel.Empty())
}

func TestQueriesCachedPerInvocation(t *testing.T) {
	s, fake := testScope(t, t.TempDir())
	fake.outputs["diff --name-only --cached"] = "staged.py\n"

	ctx := context.Background()
	s.Select(ctx, true, true)
	s.Select(ctx, true, true)
	s.Select(ctx, true, true)

	assert.Equal(t, 1, fake.calls["diff --name-only --cached"])
}

func TestSelectionEmpty(t *testing.T) {
	assert.True(t, Selection{Scoped: true}.Empty())
	assert.False(t, Selection{Files: []string{"a.py"}}.Empty())
}
