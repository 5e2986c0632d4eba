// Package history keeps a SQLite record of finished and running download
// tasks so the shell can list recent work across restarts.
package history
