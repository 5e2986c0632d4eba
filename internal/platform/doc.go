package platform

// Package platform contains OS integration helpers: directory setup,
// delete-if-exists cleanup of partial files, source URL helpers, and
// revealing finished downloads in the system file manager.
