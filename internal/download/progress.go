package download

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/ytget/media-toolkit/internal/model"
)

// normalizePercent picks the best available progress signal: byte ratio,
// then a literal percentage, then the last known value
func normalizePercent(p FetchProgress, last int) int {
	if p.TotalBytes > 0 {
		return model.ClampPercent(int(p.DownloadedBytes * 100 / p.TotalBytes))
	}
	if v, ok := parsePercent(p.PercentString); ok {
		return model.ClampPercent(int(v))
	}
	return last
}

// parsePercent reads strings like "42.3%", " 7%" or colourised "\x1b[0;94m 42.3%\x1b[0m"
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(ansi.Strip(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// statusText renders the human readable line for a downloading payload
func statusText(p FetchProgress) string {
	var b strings.Builder
	b.WriteString("Downloading")
	switch {
	case p.Item > 0 && p.Items > 0:
		fmt.Fprintf(&b, " item %d/%d", p.Item, p.Items)
	case p.Item > 0:
		fmt.Fprintf(&b, " item %d", p.Item)
	}
	b.WriteString("...")

	if p.TotalBytes > 0 {
		fmt.Fprintf(&b, " %s / %s", humanize.Bytes(uint64(p.DownloadedBytes)), humanize.Bytes(uint64(p.TotalBytes)))
	}
	if p.ETA > 0 {
		fmt.Fprintf(&b, " ETA: %ds", int(p.ETA/time.Second))
	}
	return b.String()
}
