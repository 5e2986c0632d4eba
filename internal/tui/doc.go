// Package tui renders a single download in the terminal with Bubble Tea.
// The program's update loop doubles as the interactive loop: controller
// events are queued on a loop.Loop and drained from Update.
package tui
