package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ytget/media-toolkit/internal/controller"
	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
)

const (
	maxProgressWidth = 60
	progressPadding  = 4
)

// Model is the Bubble Tea model of one download
type Model struct {
	ctrl  *controller.Controller
	loop  *loop.Loop
	inbox *inbox
	now   func() time.Time

	task       model.DownloadTask
	done       bool
	cancelling bool
	quitting   bool

	progress progress.Model
	spinner  spinner.Model
}

// NewModel watches the task currently held by ctrl. The controller must
// schedule on l.
func NewModel(ctrl *controller.Controller, l *loop.Loop) Model {
	in := &inbox{}
	ctrl.Subscribe(in)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		ctrl:     ctrl,
		loop:     l,
		inbox:    in,
		now:      time.Now,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxProgressWidth)),
		spinner:  s,
	}
	if task, ok := ctrl.Current(); ok {
		m.task = task
		m.done = task.State.IsFinished()
	}
	return m
}

// Init starts the spinner and the loop pump
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForLoop(m.loop))
}

// Task returns the last task snapshot the model saw
func (m Model) Task() model.DownloadTask {
	return m.task
}

// Interrupted reports whether the user quit before the task ended
func (m Model) Interrupted() bool {
	return m.quitting && !m.done
}
