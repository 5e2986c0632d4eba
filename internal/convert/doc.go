// Package convert hosts the single-shot media utilities of the toolkit.
// Each utility takes a list of input files and an output directory and
// reports how many inputs succeeded and how many failed.
package convert
