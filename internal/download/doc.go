package download

// Package download implements the push-model download worker. A Worker runs
// one FetchEngine invocation per task on its own goroutine, turns engine
// feedback into model.ProgressEvent values, enforces cooperative
// cancellation through the feedback hook, and removes partial files when a
// task does not succeed. YtDlpEngine adapts yt-dlp (via
// github.com/lrstanley/go-ytdlp) to the FetchEngine contract.
