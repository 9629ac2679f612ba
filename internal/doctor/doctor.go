// Package doctor produces the read-only diagnostic report for the doctor
// command. It inspects configuration, environment resolution, and tool
// availability without invoking anything; reporting is its entire job.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/pyflight/internal/config"
	"github.com/fyrsmithlabs/pyflight/internal/pyenv"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)
)

// Check is one diagnostic line.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report is the full diagnostic picture for one project.
type Report struct {
	Root   string
	Checks []Check
}

// Diagnose builds the report. repoOK is the File Scoping Engine's cached
// repository-presence answer; env is the Environment Resolver's result.
// Diagnose runs no external commands.
func Diagnose(root string, cfg config.Config, env pyenv.Env, repoOK bool) Report {
	r := Report{Root: root}

	r.add("pyproject.toml", fileExists(filepath.Join(root, "pyproject.toml")), "")

	if env.Found() {
		r.add("environment", true, fmt.Sprintf("%s (%s)", env.Dir, env.Source))
		for _, tool := range toolsFor(cfg) {
			r.add("tool: "+tool, fileExists(env.Tool(tool)), "")
		}
	} else {
		r.add("environment", false, "none found; run: pyflight init")
	}

	detail := ""
	if !repoOK {
		detail = "changed-file scoping unavailable"
	}
	r.add("git repository", repoOK, detail)

	r.add("config: formatter", true, cfg.Formatter)
	r.add("config: typechecker", true, cfg.Typechecker)
	r.add("config: coverage_min", true, fmt.Sprintf("%d", cfg.CoverageMin))

	return r
}

// toolsFor lists the entry scripts the configured pipeline needs.
func toolsFor(cfg config.Config) []string {
	tools := []string{"ruff"}
	if cfg.Formatter == config.FormatterBlack {
		tools = append(tools, "black")
	}
	return append(tools, cfg.Typechecker, "pytest", "pip-audit", "bandit", "pre-commit")
}

func (r *Report) add(name string, ok bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, OK: ok, Detail: detail})
}

// Render writes the human-readable report.
func (r Report) Render(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("pyflight doctor"))
	fmt.Fprintf(w, "project root: %s\n", r.Root)
	for _, c := range r.Checks {
		mark := okStyle.Render("ok")
		if !c.OK {
			mark = missStyle.Render("missing")
		}
		line := fmt.Sprintf("  %-22s %s", c.Name, mark)
		if c.Detail != "" {
			line += "  " + c.Detail
		}
		fmt.Fprintln(w, line)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
