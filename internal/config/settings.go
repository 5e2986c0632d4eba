package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/media-toolkit/internal/model"
)

// Settings keys for Fyne preferences
const (
	KeyOutputRoot         = "output_root"
	KeyYouTubeFormat      = "youtube_format"
	KeyTikTokFormat       = "tiktok_format"
	KeyTorrentEndpoint    = "torrent_endpoint"
	KeyTorrentUsername    = "torrent_username"
	KeyTorrentPassword    = "torrent_password"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultFormat             = model.FormatVideo
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = true
)

// Settings stores user choices made in the GUI. Values left unset fall back
// to the loaded Config.
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// Apply overlays stored preferences onto cfg
func (s *Settings) Apply(cfg *Config) {
	prefs := s.app.Preferences()
	if v := prefs.String(KeyOutputRoot); v != "" {
		cfg.OutputRoot = v
	}
	if v := prefs.String(KeyTorrentEndpoint); v != "" {
		cfg.TorrentEndpoint = v
	}
	if v := prefs.String(KeyTorrentUsername); v != "" {
		cfg.TorrentUsername = v
	}
	if v := prefs.String(KeyTorrentPassword); v != "" {
		cfg.TorrentPassword = v
	}
}

// GetOutputRoot returns the stored output root, or fallback when unset
func (s *Settings) GetOutputRoot(fallback string) string {
	return s.app.Preferences().StringWithFallback(KeyOutputRoot, fallback)
}

// SetOutputRoot sets the output root
func (s *Settings) SetOutputRoot(dir string) {
	s.app.Preferences().SetString(KeyOutputRoot, dir)
}

func formatKey(kind model.ServiceKind) string {
	if kind == model.ServiceTikTok {
		return KeyTikTokFormat
	}
	return KeyYouTubeFormat
}

// GetFormat returns the last format chosen for a service
func (s *Settings) GetFormat(kind model.ServiceKind) model.Format {
	stored := model.Format(s.app.Preferences().String(formatKey(kind)))
	for _, f := range model.FormatsFor(kind) {
		if f == stored {
			return f
		}
	}
	return DefaultFormat
}

// SetFormat remembers the format chosen for a service
func (s *Settings) SetFormat(kind model.ServiceKind, format model.Format) {
	s.app.Preferences().SetString(formatKey(kind), string(format))
}

// GetTorrentCredentials returns the stored WebUI endpoint and login
func (s *Settings) GetTorrentCredentials(cfg *Config) (endpoint, username, password string) {
	prefs := s.app.Preferences()
	return prefs.StringWithFallback(KeyTorrentEndpoint, cfg.TorrentEndpoint),
		prefs.StringWithFallback(KeyTorrentUsername, cfg.TorrentUsername),
		prefs.StringWithFallback(KeyTorrentPassword, cfg.TorrentPassword)
}

// SetTorrentCredentials stores the WebUI endpoint and login
func (s *Settings) SetTorrentCredentials(endpoint, username, password string) {
	prefs := s.app.Preferences()
	prefs.SetString(KeyTorrentEndpoint, endpoint)
	prefs.SetString(KeyTorrentUsername, username)
	prefs.SetString(KeyTorrentPassword, password)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to reveal finished downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal finished downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
