package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-toolkit/internal/model"
)

// CompactTheme trims paddings and text sizes of the default theme so that
// four tool tabs fit a small window
type CompactTheme struct{}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{}
}

var compactColors = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameSuccess: color.RGBA{R: 46, G: 160, B: 67, A: 255},
	theme.ColorNameError:   color.RGBA{R: 183, G: 28, B: 28, A: 255},
	theme.ColorNameWarning: color.RGBA{R: 255, G: 193, B: 7, A: 255},
	theme.ColorNamePrimary: color.RGBA{R: 25, G: 118, B: 210, A: 255},
}

var compactSizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:        3,
	theme.SizeNameInnerPadding:   6,
	theme.SizeNameLineSpacing:    2,
	theme.SizeNameScrollBar:      12,
	theme.SizeNameText:           13,
	theme.SizeNameHeadingText:    16,
	theme.SizeNameSubHeadingText: 13,
	theme.SizeNameCaptionText:    10,
	theme.SizeNameInputRadius:    3,
}

// Color implements fyne.Theme
func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if c, ok := compactColors[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

// Font implements fyne.Theme
func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon implements fyne.Theme
func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size implements fyne.Theme
func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	if s, ok := compactSizes[name]; ok {
		return s
	}
	return theme.DefaultTheme().Size(name)
}

// stateStyle picks the label importance and icon for a task state
func stateStyle(state model.TaskState) (widget.Importance, string) {
	switch state {
	case model.TaskStateFailed:
		return widget.DangerImportance, IconError
	case model.TaskStateSucceeded:
		return widget.SuccessImportance, IconDone
	case model.TaskStateRunning:
		return widget.HighImportance, IconPlay
	case model.TaskStateCancelled:
		return widget.MediumImportance, IconStop
	default:
		return widget.MediumImportance, IconPending
	}
}
