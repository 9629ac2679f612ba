// Package gitscope determines the target file set for a run: the whole
// project, files changed since the last commit, or files staged in the index.
//
// Version-control state is queried through the git binary with a bounded
// timeout. Absence of a repository and query timeouts are equivalent and
// non-fatal: scoped stages degrade to a skip, never to a failed run.
package gitscope

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// ErrNoRepository indicates the project is not under version control or git
// could not answer in time. Callers degrade to skipping scoped stages.
var ErrNoRepository = errors.New("version control not available")

// queryTimeout bounds every git invocation. Stage commands carry no such
// bound; only scoping queries do.
const queryTimeout = 5 * time.Second

// pythonExtensions are the source-language extensions a selection may hold.
var pythonExtensions = []string{".py", ".pyi"}

// Selection is the resolved target file set for a run.
type Selection struct {
	// Files holds project-relative paths, deduplicated, insertion order
	// preserved. For a full-project selection it is the deterministic
	// walk result; stages still pass "." to the tools in that mode.
	Files []string
	// Scoped is true for changed/staged selections.
	Scoped bool
}

// Empty reports whether the selection holds no files.
func (s Selection) Empty() bool {
	return len(s.Files) == 0
}

// Scope answers scoping queries for a single command invocation. Repository
// presence and query results are cached for the lifetime of the value; a new
// invocation builds a new Scope.
type Scope struct {
	root    string
	log     *zap.Logger
	git     GitRunner
	timeout time.Duration

	repoChecked bool
	repoOK      bool
	queries     map[string]queryResult
}

type queryResult struct {
	files []string
	ok    bool
}

// New creates a Scope for the project root.
func New(root string, logger *zap.Logger) *Scope {
	return &Scope{
		root:    root,
		log:     logger,
		git:     execGit{},
		timeout: queryTimeout,
		queries: make(map[string]queryResult),
	}
}

// RepoAvailable reports whether the project root is a git repository.
// Memoized for the invocation.
func (s *Scope) RepoAvailable() bool {
	if s.repoChecked {
		return s.repoOK
	}
	s.repoChecked = true
	_, err := git.PlainOpen(s.root)
	s.repoOK = err == nil
	if !s.repoOK {
		s.log.Debug("no git repository at project root", zap.String("root", s.root))
	}
	return s.repoOK
}

// Select resolves the file selection for the given scoping flags.
//
// changed unset means full project. changed alone lists working-tree changes
// against the last commit plus untracked files; changed with staged lists the
// index instead (the pre-commit mode). staged without changed has no effect.
//
// When version control is unavailable or a query times out, a scoped
// selection comes back empty with a visible notice; the caller skips the
// affected stages.
func (s *Scope) Select(ctx context.Context, changed, staged bool) Selection {
	if !changed {
		return Selection{Files: s.fullProject(), Scoped: false}
	}

	if !s.RepoAvailable() {
		s.log.Warn("changed-file scoping unavailable, scoped stages will be skipped",
			zap.Error(ErrNoRepository))
		return Selection{Scoped: true}
	}

	var files []string
	var ok bool
	if staged {
		files, ok = s.stagedFiles(ctx)
	} else {
		files, ok = s.changedFiles(ctx)
	}
	if !ok {
		s.log.Warn("git query failed or timed out; scoped stages will be skipped")
		return Selection{Scoped: true}
	}

	return Selection{Files: filterPython(files), Scoped: true}
}

// stagedFiles lists paths staged in the index.
func (s *Scope) stagedFiles(ctx context.Context) ([]string, bool) {
	return s.cached(ctx, "staged", func(ctx context.Context) ([]string, bool) {
		out, err := s.run(ctx, "diff", "--name-only", "--cached")
		if err != nil {
			return nil, false
		}
		return splitLines(out), true
	})
}

// changedFiles lists working-tree changes against HEAD plus untracked files.
// On an unborn HEAD the diff falls back to the index-less form.
func (s *Scope) changedFiles(ctx context.Context) ([]string, bool) {
	return s.cached(ctx, "changed", func(ctx context.Context) ([]string, bool) {
		tracked, err := s.run(ctx, "diff", "--name-only", "HEAD")
		if err != nil {
			tracked, err = s.run(ctx, "diff", "--name-only")
			if err != nil {
				return nil, false
			}
		}

		untracked, err := s.run(ctx, "ls-files", "--others", "--exclude-standard")
		if err != nil {
			return nil, false
		}

		return dedupe(append(splitLines(tracked), splitLines(untracked)...)), true
	})
}

func (s *Scope) cached(ctx context.Context, key string, query func(context.Context) ([]string, bool)) ([]string, bool) {
	if res, hit := s.queries[key]; hit {
		return res.files, res.ok
	}
	files, ok := query(ctx)
	s.queries[key] = queryResult{files: files, ok: ok}
	return files, ok
}

func (s *Scope) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.git.Output(ctx, s.root, args...)
}

// fullProject walks the project tree collecting Python sources, sorted for
// reproducibility. Tooling, cache, and environment directories are skipped.
func (s *Scope) fullProject() []string {
	var files []string
	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == s.root {
				return nil
			}
			if strings.HasPrefix(name, ".") || name == "venv" || name == "env" ||
				name == "__pycache__" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if isPython(name) {
			rel, relErr := filepath.Rel(s.root, path)
			if relErr == nil {
				files = append(files, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	sort.Strings(files)
	return files
}

func isPython(name string) bool {
	for _, ext := range pythonExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// filterPython keeps Python sources, deduplicated, insertion order preserved.
func filterPython(files []string) []string {
	var kept []string
	for _, f := range files {
		if isPython(f) {
			kept = append(kept, f)
		}
	}
	return dedupe(kept)
}

func dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	var out []string
	for _, f := range files {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
