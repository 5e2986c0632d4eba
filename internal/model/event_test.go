package model

import "testing"

func TestProgressEvent_Constructors(t *testing.T) {
	tests := []struct {
		ev       ProgressEvent
		terminal bool
		state    TaskState
		percent  int
	}{
		{Progress(50, ""), false, TaskStateRunning, 50},
		{Progress(-3, ""), false, TaskStateRunning, 0},
		{Progress(140, ""), false, TaskStateRunning, 100},
		{Finished("ok"), true, TaskStateSucceeded, 100},
		{Cancelled("stopped"), true, TaskStateCancelled, 0},
		{Failed("boom"), true, TaskStateFailed, 0},
	}

	for _, test := range tests {
		if test.ev.IsTerminal() != test.terminal {
			t.Errorf("%s IsTerminal() = %v, expected %v", test.ev, test.ev.IsTerminal(), test.terminal)
		}
		if test.ev.State() != test.state {
			t.Errorf("%s State() = %s, expected %s", test.ev, test.ev.State(), test.state)
		}
		if test.ev.Percent != test.percent {
			t.Errorf("%s Percent = %d, expected %d", test.ev, test.ev.Percent, test.percent)
		}
	}
}

func TestProgressEvent_String(t *testing.T) {
	if got := Progress(50, "x").String(); got != "Progress(50)" {
		t.Errorf("Unexpected string %s", got)
	}
	if got := Failed("NetworkTimeout").String(); got != `failed("NetworkTimeout")` {
		t.Errorf("Unexpected string %s", got)
	}
}
