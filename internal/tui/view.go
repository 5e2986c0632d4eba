package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ytget/media-toolkit/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"}).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"}).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "34", Dark: "10"}).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "172", Dark: "214"})

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"})
)

// View renders the download
func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("%s download", m.task.Service)) + "\n\n")
	b.WriteString("  " + helpStyle.Render(m.task.GetDisplayTitle()) + "\n\n")
	if m.done {
		b.WriteString("  " + m.progress.ViewAs(float64(m.task.ProgressPercent)/100) + "\n\n")
	} else {
		b.WriteString("  " + m.progress.View() + "\n\n")
	}
	b.WriteString("  " + m.statusLine() + "\n")

	if !m.task.StartedAt.IsZero() {
		b.WriteString("  " + helpStyle.Render("Elapsed: "+m.task.GetElapsedString(m.now())) + "\n")
	}

	if !m.done {
		help := "q: cancel"
		if m.cancelling {
			help = "q: quit without waiting"
		}
		b.WriteString("\n  " + helpStyle.Render(help) + "\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	text := strings.ReplaceAll(m.task.StatusText, "\n", "\n  ")
	switch m.task.State {
	case model.TaskStateSucceeded:
		return successStyle.Render("✓ " + text)
	case model.TaskStateFailed:
		return errorStyle.Render("✗ " + text)
	case model.TaskStateCancelled:
		return warnStyle.Render(text)
	}
	if m.cancelling {
		return m.spinner.View() + " " + warnStyle.Render("Cancelling...")
	}
	return m.spinner.View() + " " + text
}
