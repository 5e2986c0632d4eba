package torrent

// Package torrent drives downloads handled by a separately managed torrent
// service. The service exposes no callbacks, so the Coordinator submits an
// item, discovers its handle after a short delay, and polls its status on the
// interactive loop until it completes, fails, or is cancelled. Two Service
// implementations exist: a qBittorrent WebUI client and an embedded
// anacrolix/torrent client.
