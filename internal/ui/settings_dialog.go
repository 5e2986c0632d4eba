package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-toolkit/internal/config"
)

// SettingsDialog edits the preferences overlaid on the loaded Config
type SettingsDialog struct {
	settings *config.Settings
	cfg      *config.Config
	loc      *Localization
	window   fyne.Window
	dialog   *dialog.ConfirmDialog
	onSaved  func(torrentChanged bool)

	outputEntry    *widget.Entry
	endpointEntry  *widget.Entry
	usernameEntry  *widget.Entry
	passwordEntry  *widget.Entry
	languageSelect *widget.Select
	autoRevealChk  *widget.Check

	languageCodes map[string]string // display name to code
}

// ShowSettingsDialog builds and shows the dialog
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, cfg *config.Config, loc *Localization, onSaved func(torrentChanged bool)) *SettingsDialog {
	sd := NewSettingsDialog(settings, cfg, loc, window, onSaved)
	sd.Show()
	return sd
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, cfg *config.Config, loc *Localization, window fyne.Window, onSaved func(torrentChanged bool)) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		cfg:      cfg,
		loc:      loc,
		window:   window,
		onSaved:  onSaved,
	}
	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	sd.outputEntry = widget.NewEntry()
	browseBtn := widget.NewButton(sd.loc.GetText(KeyBrowse), sd.onBrowseDirectory)
	outputRow := container.NewBorder(nil, nil, nil, browseBtn, sd.outputEntry)

	sd.endpointEntry = widget.NewEntry()
	sd.endpointEntry.SetPlaceHolder("http://localhost:8080/")
	sd.usernameEntry = widget.NewEntry()
	sd.passwordEntry = widget.NewPasswordEntry()

	sd.languageCodes = make(map[string]string)
	var names []string
	for code, name := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[name] = code
		names = append(names, name)
	}
	sd.languageSelect = widget.NewSelect(names, nil)

	sd.autoRevealChk = widget.NewCheck(sd.loc.GetText(KeyAutoReveal), nil)

	form := widget.NewForm(
		widget.NewFormItem(sd.loc.GetText(KeyOutputRoot), outputRow),
		widget.NewFormItem(sd.loc.GetText(KeyTorrentEndpoint), sd.endpointEntry),
		widget.NewFormItem(sd.loc.GetText(KeyTorrentUser), sd.usernameEntry),
		widget.NewFormItem(sd.loc.GetText(KeyTorrentPassword), sd.passwordEntry),
		widget.NewFormItem(sd.loc.GetText(KeyLanguage), sd.languageSelect),
		widget.NewFormItem("", sd.autoRevealChk),
	)

	sd.dialog = dialog.NewCustomConfirm(
		sd.loc.GetText(KeySettings),
		sd.loc.GetText(KeySave),
		sd.loc.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.outputEntry.SetText(sd.settings.GetOutputRoot(sd.cfg.OutputRoot))
	endpoint, user, pass := sd.settings.GetTorrentCredentials(sd.cfg)
	sd.endpointEntry.SetText(endpoint)
	sd.usernameEntry.SetText(user)
	sd.passwordEntry.SetText(pass)
	sd.autoRevealChk.SetChecked(sd.settings.GetAutoRevealOnComplete())

	current := sd.settings.GetLanguage()
	for name, code := range sd.languageCodes {
		if code == current {
			sd.languageSelect.SetSelected(name)
		}
	}
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.outputEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave persists the form and overlays it onto the live Config
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.outputEntry.Text; dir != "" {
		sd.settings.SetOutputRoot(dir)
	}

	oldEndpoint, oldUser, oldPass := sd.settings.GetTorrentCredentials(sd.cfg)
	torrentChanged := oldEndpoint != sd.endpointEntry.Text || oldUser != sd.usernameEntry.Text || oldPass != sd.passwordEntry.Text
	if torrentChanged {
		sd.settings.SetTorrentCredentials(sd.endpointEntry.Text, sd.usernameEntry.Text, sd.passwordEntry.Text)
	}

	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
	}
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealChk.Checked)

	sd.settings.Apply(sd.cfg)

	if sd.onSaved != nil {
		sd.onSaved(torrentChanged)
	}
}
