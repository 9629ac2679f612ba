package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Header writes the banner shown before a stage executes.
func Header(w io.Writer, name string) {
	fmt.Fprintln(w, headerStyle.Render("==> "+name))
}

// Notice writes an informational line, used for skip notices at stage
// position.
func Notice(w io.Writer, msg string) {
	fmt.Fprintln(w, skipStyle.Render(msg))
}

// badge renders the status cell for the summary table.
func badge(s Status) string {
	switch s {
	case StatusPassed:
		return passStyle.Render("PASS")
	case StatusFailed:
		return failStyle.Render("FAIL")
	default:
		return skipStyle.Render("SKIP")
	}
}

// Summary writes the per-stage table and the final verdict.
func (r *Run) Summary(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(title))
	for _, res := range r.results {
		line := fmt.Sprintf("  %s  %s", badge(res.Status), res.Name)
		if res.Detail != "" {
			line += "  " + detailStyle.Render("("+res.Detail+")")
		}
		fmt.Fprintln(w, line)
	}

	if r.OK() {
		fmt.Fprintln(w, passStyle.Render("✅ all checks passed"))
	} else {
		fmt.Fprintln(w, failStyle.Render("❌ checks failed"))
	}
}
