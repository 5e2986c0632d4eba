package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
)

// loopReadyMsg means closures are waiting on the loop
type loopReadyMsg struct{}

type taskEvent struct {
	task model.DownloadTask
	ev   model.ProgressEvent
}

// inbox collects controller events while the loop drains. Only the program
// goroutine touches it.
type inbox struct {
	events []taskEvent
}

// OnEvent implements controller.Observer
func (b *inbox) OnEvent(task model.DownloadTask, ev model.ProgressEvent) {
	b.events = append(b.events, taskEvent{task: task, ev: ev})
}

func (b *inbox) take() []taskEvent {
	events := b.events
	b.events = nil
	return events
}

func waitForLoop(l *loop.Loop) tea.Cmd {
	return func() tea.Msg {
		<-l.Ready()
		return loopReadyMsg{}
	}
}
