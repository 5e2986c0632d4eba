package ui

import "time"

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconStop     = "⏹"
	IconFolder   = "📁"
	IconPending  = "⏳"
	IconDone     = "✔"
	IconError    = "❌"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	ProgressLabelFormat = "%d%%"
)

// Window and panel sizing
const (
	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 420
	CompressListHeight   float32 = 180
)

// ElapsedRefresh is how often the elapsed label ticks while a task runs
const ElapsedRefresh = time.Second

// TorrentFileFilter restricts the .torrent picker
var TorrentFileFilter = []string{".torrent"}

// VideoFileFilter restricts the compress picker
var VideoFileFilter = []string{".mp4", ".mkv", ".mov", ".avi", ".webm", ".m4v"}
