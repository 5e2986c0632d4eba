package convert

import "context"

// Result summarizes one batch run
type Result struct {
	Succeeded int
	Failed    int
	Outputs   []string         // written files, in input order
	Errors    map[string]error // keyed by input path
}

// Collaborator is a batch file utility hosted by the shell
type Collaborator interface {
	Process(ctx context.Context, inputs []string, outputDir string) (Result, error)
}

// ProgressFunc receives per-input progress in percent
type ProgressFunc func(input string, percent int)

// Transcoder converts one file
type Transcoder interface {
	Transcode(ctx context.Context, input, output string, onProgress func(percent int)) error
}
