package convert

import (
	"strings"
	"testing"
)

func TestBuildFFmpegArgs(t *testing.T) {
	args := BuildFFmpegArgs("/input.mp4", "/output.mp4")

	expectedArgs := []string{
		"-y",
		"-i", "/input.mp4",
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-crf", VideoCRF,
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-movflags", FastStartFlag,
		"-progress", "pipe:2",
		"-nostats",
		"/output.mp4",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}

	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		line     string
		duration float64
		percent  int
		ok       bool
	}{
		{"out_time_us=5000000", 10, 50, true},
		{"  out_time_us=20000000  ", 10, 100, true},
		{"out_time_us=0", 10, 0, true},
		{"out_time_us=abc", 10, 0, false},
		{"out_time_us=-1", 10, 0, false},
		{"frame=100", 10, 0, false},
		{"out_time_us=5000000", 0, 0, false},
	}

	for _, test := range tests {
		percent, ok := parseProgressLine(test.line, test.duration)
		if ok != test.ok || percent != test.percent {
			t.Errorf("parseProgressLine(%q, %v) = (%d, %v), expected (%d, %v)",
				test.line, test.duration, percent, ok, test.percent, test.ok)
		}
	}
}

func TestMonitorProgress_SkipsRepeats(t *testing.T) {
	input := strings.Join([]string{
		"frame=1",
		"out_time_us=1000000",
		"out_time_us=1000001",
		"progress=continue",
		"out_time_us=4000000",
		"progress=end",
	}, "\n")

	var got []int
	monitorProgress(strings.NewReader(input), 4, func(p int) { got = append(got, p) })

	expected := []int{25, 100}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Update %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("12.5\n")
	if err != nil || d != 12.5 {
		t.Errorf("Expected 12.5, got %v (%v)", d, err)
	}
	if _, err := parseDuration("N/A"); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
