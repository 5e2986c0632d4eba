// Package app wires configuration, download controllers, torrent backend,
// history and metrics into one Toolkit shared by the GUI and the CLI.
package app
