// Package ui contains the Fyne shell of the toolkit. Each downloader tool
// gets a tab bound to its controller; the compress tab drives the convert
// utility. All UI strings are localized via Localization.
package ui
