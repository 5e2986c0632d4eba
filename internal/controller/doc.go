package controller

// Package controller is the interactive-side façade over a download runner.
// A Controller validates requests, owns the single active task record,
// relays runner events onto the scheduler in arrival order, and releases its
// slot when a terminal event is delivered.
