package model

// Package model defines domain data structures shared by the download core and
// its front-ends: task records, lifecycle states, progress events, the
// cancellation token, and the error taxonomy. The controller owns task records;
// background workers only publish events.
