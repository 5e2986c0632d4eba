package platform

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Domain tokens a source must carry for each service
const (
	YouTubeDomainToken  = "youtube.com"
	YouTubeShortToken   = "youtu.be"
	TikTokDomainToken   = "tiktok.com"
	MagnetScheme        = "magnet:"
	TorrentFileExtLower = ".torrent"
)

// IsPlaylistURL reports whether a YouTube URL references a playlist
func IsPlaylistURL(rawURL string) bool {
	return strings.Contains(rawURL, PlaylistURLParam)
}

// ExtractPlaylistID extracts the playlist ID from a YouTube playlist URL.
// Supported shapes:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(rawURL string) (string, error) {
	parts := strings.SplitN(rawURL, PlaylistURLParam, 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}

	playlistID, _, _ := strings.Cut(parts[1], PlaylistParamSeparator)
	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}
	return playlistID, nil
}

// ExtractVideoID returns the v= parameter, or the path of a youtu.be link
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	if strings.EqualFold(u.Hostname(), YouTubeShortToken) {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no video id in %s", rawURL)
}

// VideoOnlyURL drops the playlist part of a URL, keeping the single video.
// URLs without a playlist or without a video id are returned unchanged.
func VideoOnlyURL(rawURL string) string {
	if !IsPlaylistURL(rawURL) {
		return rawURL
	}
	id, err := ExtractVideoID(rawURL)
	if err != nil {
		return rawURL
	}
	return fmt.Sprintf(YouTubeVideoURLTemplate, id)
}

// IsYouTubeURL reports whether the source carries a YouTube domain token
func IsYouTubeURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, YouTubeDomainToken) || strings.Contains(lower, YouTubeShortToken)
}

// IsTikTokURL reports whether the source carries the TikTok domain token
func IsTikTokURL(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), TikTokDomainToken)
}

// IsMagnetURI reports whether source is a magnet link
func IsMagnetURI(source string) bool {
	return strings.HasPrefix(strings.ToLower(source), MagnetScheme)
}

// IsTorrentFile reports whether source names an existing .torrent file
func IsTorrentFile(source string) bool {
	if !strings.HasSuffix(strings.ToLower(source), TorrentFileExtLower) {
		return false
	}
	info, err := os.Stat(source)
	return err == nil && info.Mode().IsRegular()
}
