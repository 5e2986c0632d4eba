package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-toolkit/internal/app"
	"github.com/ytget/media-toolkit/internal/config"
	"github.com/ytget/media-toolkit/internal/convert"
	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
)

// toolOrder fixes the tab order
var toolOrder = []model.ServiceKind{model.ServiceYouTube, model.ServiceTikTok, model.ServiceTorrent}

// RootUI represents the main window: one tab per tool
type RootUI struct {
	window       fyne.Window
	toolkit      *app.Toolkit
	settings     *config.Settings
	localization *Localization
	sched        loop.Scheduler
	logger       *slog.Logger

	tabs     *container.AppTabs
	panels   []*ToolPanel
	compress *CompressPanel
	tabItems map[string]*container.TabItem
}

// NewRootUI creates and initializes the main UI. sched must run callbacks
// on the Fyne thread, e.g. loop.NewClock(fyne.Do).
func NewRootUI(window fyne.Window, fyneApp fyne.App, tk *app.Toolkit, sched loop.Scheduler, logger *slog.Logger) *RootUI {
	settings := config.NewSettings(fyneApp)
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		toolkit:      tk,
		settings:     settings,
		localization: localization,
		sched:        sched,
		logger:       logger,
		tabItems:     make(map[string]*container.TabItem),
	}
	ui.setupUI()
	return ui
}

func (ui *RootUI) setupUI() {
	ui.createMenu()
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))

	ui.tabs = container.NewAppTabs()
	for _, kind := range toolOrder {
		ctrl := ui.toolkit.Controller(kind)
		if ctrl == nil {
			continue
		}
		panel := NewToolPanel(ctrl, ui.toolkit.Config, ui.settings, ui.localization, ui.window, ui.sched,
			ui.logger.With("component", "ui", "service", string(kind)))
		ui.panels = append(ui.panels, panel)
		ui.addTab(KeyTabTitle(kind), panel.Content())
	}

	ui.compress = NewCompressPanel(
		func(fn convert.ProgressFunc) convert.Collaborator { return ui.toolkit.Compressor(fn) },
		ui.toolkit.Config.CompressOutputDir,
		ui.localization, ui.window, ui.sched, ui.logger.With("component", "ui"),
	)
	ui.addTab(KeyTabCompress, ui.compress.Content())

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.window.SetContent(container.NewBorder(
		container.NewHBox(settingsBtn), nil, nil, nil,
		ui.tabs,
	))
}

func (ui *RootUI) addTab(key string, content fyne.CanvasObject) {
	item := container.NewTabItem(ui.localization.GetText(key), content)
	ui.tabItems[key] = item
	ui.tabs.Append(item)
}

func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		item := fyne.NewMenuItem(name, func() { ui.onLanguageChange(code) })
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts re-applies localized strings to every tab
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	for key, item := range ui.tabItems {
		item.Text = ui.localization.GetText(key)
	}
	for _, panel := range ui.panels {
		panel.refreshTexts()
	}
	ui.compress.refreshTexts()
	ui.tabs.Refresh()
}

func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.toolkit.Config, ui.localization, func(torrentChanged bool) {
		if err := config.EnsureDirs(ui.toolkit.Config); err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.createMenu()

		msg := ui.localization.GetText(KeySettingsSaved)
		if torrentChanged {
			msg += "\n" + ui.localization.GetText(KeyRestartRequired)
		}
		dialog.ShowInformation(ui.localization.GetText(KeySettings), msg, ui.window)
	})
}

// Shutdown cancels running downloads before the window closes
func (ui *RootUI) Shutdown() {
	ui.toolkit.CancelAll()
}
