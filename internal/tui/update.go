package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - progressPadding*2
		if m.progress.Width > maxProgressWidth {
			m.progress.Width = maxProgressWidth
		}
		return m, nil

	case loopReadyMsg:
		m.loop.RunPending()
		var cmds []tea.Cmd
		for _, te := range m.inbox.take() {
			m.task = te.task
			cmds = append(cmds, m.progress.SetPercent(float64(te.task.ProgressPercent)/100))
			if te.ev.IsTerminal() {
				m.done = true
			}
		}
		if m.done {
			return m, tea.Sequence(tea.Batch(cmds...), tea.Quit)
		}
		cmds = append(cmds, waitForLoop(m.loop))
		return m, tea.Batch(cmds...)

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.done || m.cancelling {
			m.quitting = true
			return m, tea.Quit
		}
		if m.ctrl.Cancel() {
			m.cancelling = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}
