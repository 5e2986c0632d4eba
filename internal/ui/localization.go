package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle        = "app_title"
	KeyTabYouTube      = "tab_youtube"
	KeyTabTikTok       = "tab_tiktok"
	KeyTabTorrent      = "tab_torrent"
	KeyTabCompress     = "tab_compress"
	KeyDownload        = "download"
	KeyStop            = "stop"
	KeyOpenFolder      = "open_folder"
	KeyCompress        = "compress"
	KeyAddFiles        = "add_files"
	KeyClear           = "clear"
	KeySettings        = "settings"
	KeyFile            = "file"
	KeyLanguage        = "language"
	KeyOutputRoot      = "output_root"
	KeyTorrentEndpoint = "torrent_endpoint"
	KeyTorrentUser     = "torrent_username"
	KeyTorrentPassword = "torrent_password"
	KeyAutoReveal      = "auto_reveal"
	KeySave            = "save"
	KeyCancel          = "cancel"
	KeyBrowse          = "browse"
	KeyEnterYouTubeURL = "enter_youtube_url"
	KeyEnterTikTokURL  = "enter_tiktok_url"
	KeyEnterTorrent    = "enter_torrent"
	KeyWholePlaylist   = "whole_playlist"
	KeySettingsSaved   = "settings_saved"
	KeyRestartRequired = "restart_required"
	KeyInvalidRequest  = "invalid_request"
	KeyTaskBusy        = "task_busy"
	KeyElapsed         = "elapsed"
	KeyCompressResult  = "compress_result"
	KeyNoFilesSelected = "no_files_selected"
	KeyIdle            = "idle"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// system locale detection is not wired; English covers it
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if text, found := l.texts["en"][key]; found {
		return text
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:        "Media Toolkit",
		KeyTabYouTube:      "YouTube",
		KeyTabTikTok:       "TikTok",
		KeyTabTorrent:      "Torrent",
		KeyTabCompress:     "Compress",
		KeyDownload:        "Download",
		KeyStop:            "Stop",
		KeyOpenFolder:      "Open folder",
		KeyCompress:        "Compress",
		KeyAddFiles:        "Add files",
		KeyClear:           "Clear",
		KeySettings:        "Settings",
		KeyFile:            "File",
		KeyLanguage:        "Language",
		KeyOutputRoot:      "Output folder",
		KeyTorrentEndpoint: "qBittorrent WebUI",
		KeyTorrentUser:     "Username",
		KeyTorrentPassword: "Password",
		KeyAutoReveal:      "Open folder when a download finishes",
		KeySave:            "Save",
		KeyCancel:          "Cancel",
		KeyBrowse:          "Browse",
		KeyEnterYouTubeURL: "YouTube URL (https://youtube.com/watch?v=...)",
		KeyEnterTikTokURL:  "TikTok URL (https://www.tiktok.com/@user/video/...)",
		KeyEnterTorrent:    "Magnet link or path to a .torrent file",
		KeyWholePlaylist:   "Download whole playlist",
		KeySettingsSaved:   "Settings saved successfully!",
		KeyRestartRequired: "Torrent settings take effect after restart.",
		KeyInvalidRequest:  "Invalid request",
		KeyTaskBusy:        "A download is already running in this tab",
		KeyElapsed:         "Elapsed",
		KeyCompressResult:  "Compressed: %d, failed: %d",
		KeyNoFilesSelected: "Add at least one video file",
		KeyIdle:            "Ready",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:        "Медиа инструменты",
		KeyTabYouTube:      "YouTube",
		KeyTabTikTok:       "TikTok",
		KeyTabTorrent:      "Торрент",
		KeyTabCompress:     "Сжатие",
		KeyDownload:        "Скачать",
		KeyStop:            "Стоп",
		KeyOpenFolder:      "Открыть папку",
		KeyCompress:        "Сжать",
		KeyAddFiles:        "Добавить файлы",
		KeyClear:           "Очистить",
		KeySettings:        "Настройки",
		KeyFile:            "Файл",
		KeyLanguage:        "Язык",
		KeyOutputRoot:      "Папка загрузки",
		KeyTorrentEndpoint: "qBittorrent WebUI",
		KeyTorrentUser:     "Пользователь",
		KeyTorrentPassword: "Пароль",
		KeyAutoReveal:      "Открывать папку после загрузки",
		KeySave:            "Сохранить",
		KeyCancel:          "Отмена",
		KeyBrowse:          "Обзор",
		KeyEnterYouTubeURL: "URL YouTube (https://youtube.com/watch?v=...)",
		KeyEnterTikTokURL:  "URL TikTok (https://www.tiktok.com/@user/video/...)",
		KeyEnterTorrent:    "Magnet-ссылка или путь к .torrent файлу",
		KeyWholePlaylist:   "Скачать весь плейлист",
		KeySettingsSaved:   "Настройки успешно сохранены!",
		KeyRestartRequired: "Настройки торрента применятся после перезапуска.",
		KeyInvalidRequest:  "Неверный запрос",
		KeyTaskBusy:        "Загрузка в этой вкладке уже идёт",
		KeyElapsed:         "Прошло",
		KeyCompressResult:  "Сжато: %d, ошибок: %d",
		KeyNoFilesSelected: "Добавьте хотя бы один видеофайл",
		KeyIdle:            "Готово к работе",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:        "Media Toolkit",
		KeyTabYouTube:      "YouTube",
		KeyTabTikTok:       "TikTok",
		KeyTabTorrent:      "Torrent",
		KeyTabCompress:     "Comprimir",
		KeyDownload:        "Baixar",
		KeyStop:            "Parar",
		KeyOpenFolder:      "Abrir pasta",
		KeyCompress:        "Comprimir",
		KeyAddFiles:        "Adicionar arquivos",
		KeyClear:           "Limpar",
		KeySettings:        "Configurações",
		KeyFile:            "Arquivo",
		KeyLanguage:        "Idioma",
		KeyOutputRoot:      "Pasta de saída",
		KeyTorrentEndpoint: "qBittorrent WebUI",
		KeyTorrentUser:     "Usuário",
		KeyTorrentPassword: "Senha",
		KeyAutoReveal:      "Abrir pasta ao concluir o download",
		KeySave:            "Salvar",
		KeyCancel:          "Cancelar",
		KeyBrowse:          "Navegar",
		KeyEnterYouTubeURL: "URL do YouTube (https://youtube.com/watch?v=...)",
		KeyEnterTikTokURL:  "URL do TikTok (https://www.tiktok.com/@user/video/...)",
		KeyEnterTorrent:    "Link magnet ou caminho de um arquivo .torrent",
		KeyWholePlaylist:   "Baixar a playlist inteira",
		KeySettingsSaved:   "Configurações salvas com sucesso!",
		KeyRestartRequired: "As configurações de torrent valem após reiniciar.",
		KeyInvalidRequest:  "Pedido inválido",
		KeyTaskBusy:        "Já existe um download nesta aba",
		KeyElapsed:         "Decorrido",
		KeyCompressResult:  "Comprimidos: %d, falhas: %d",
		KeyNoFilesSelected: "Adicione pelo menos um arquivo de vídeo",
		KeyIdle:            "Pronto",
	}
}
