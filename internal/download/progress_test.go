package download

import (
	"testing"
	"time"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"42.3%", 42.3, true},
		{" 7%", 7, true},
		{"\x1b[0;94m 99.9%\x1b[0m", 99.9, true},
		{"100", 100, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"%", 0, false},
		{"NaN%", 0, false},
		{"Inf%", 0, false},
		{"+Inf", 0, false},
	}

	for _, test := range tests {
		got, ok := parsePercent(test.in)
		if ok != test.ok || got != test.expected {
			t.Errorf("parsePercent(%q) = %v, %v; expected %v, %v", test.in, got, ok, test.expected, test.ok)
		}
	}
}

func TestNormalizePercent(t *testing.T) {
	tests := []struct {
		name     string
		p        FetchProgress
		last     int
		expected int
	}{
		{"bytes win over string", FetchProgress{DownloadedBytes: 30, TotalBytes: 60, PercentString: "90%"}, 0, 50},
		{"string when total unknown", FetchProgress{DownloadedBytes: 30, PercentString: "90%"}, 10, 90},
		{"keep last on empty tick", FetchProgress{}, 47, 47},
		{"clamp overflow", FetchProgress{DownloadedBytes: 200, TotalBytes: 100}, 0, 100},
		{"clamp negative string", FetchProgress{PercentString: "-5%"}, 20, 0},
		{"keep last on NaN", FetchProgress{PercentString: "NaN%"}, 42, 42},
		{"keep last on Inf", FetchProgress{PercentString: "Inf%"}, 42, 42},
	}

	for _, test := range tests {
		if got := normalizePercent(test.p, test.last); got != test.expected {
			t.Errorf("%s: normalizePercent() = %d, expected %d", test.name, got, test.expected)
		}
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		p        FetchProgress
		expected string
	}{
		{FetchProgress{}, "Downloading..."},
		{FetchProgress{ETA: 12 * time.Second}, "Downloading... ETA: 12s"},
		{FetchProgress{DownloadedBytes: 5_000_000, TotalBytes: 10_000_000, ETA: 3 * time.Second}, "Downloading... 5.0 MB / 10 MB ETA: 3s"},
		{FetchProgress{Item: 3, Items: 12}, "Downloading item 3/12..."},
		{FetchProgress{Item: 3, Items: 12, ETA: 4 * time.Second}, "Downloading item 3/12... ETA: 4s"},
		{FetchProgress{Item: 2}, "Downloading item 2..."},
		{FetchProgress{Items: 12}, "Downloading..."},
	}

	for _, test := range tests {
		if got := statusText(test.p); got != test.expected {
			t.Errorf("statusText() = %q, expected %q", got, test.expected)
		}
	}
}
