package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/media-toolkit/internal/platform"
)

const (
	// CompressedSuffix is appended to the input base name
	CompressedSuffix = "-compressed"

	// OutputExtensionMP4 is the container of every compressed file
	OutputExtensionMP4 = ".mp4"

	// JobIDPrefix prefixes batch ids in logs
	JobIDPrefix = "compress-"
)

// Compressor is the video compression utility. Inputs run in parallel up to
// the configured worker count; one failing input does not stop the others.
type Compressor struct {
	transcoder Transcoder
	workers    int
	logger     *slog.Logger
	onProgress ProgressFunc
	remove     func(string) (bool, error)
}

// CompressorOption configures a Compressor
type CompressorOption func(*Compressor)

// WithProgress reports per-input progress
func WithProgress(fn ProgressFunc) CompressorOption {
	return func(c *Compressor) { c.onProgress = fn }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) CompressorOption {
	return func(c *Compressor) { c.logger = logger }
}

// NewCompressor creates a Compressor
func NewCompressor(transcoder Transcoder, workers int, opts ...CompressorOption) *Compressor {
	if workers <= 0 {
		workers = 1
	}
	c := &Compressor{
		transcoder: transcoder,
		workers:    workers,
		logger:     slog.Default(),
		remove:     platform.RemoveIfExists,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process implements Collaborator
func (c *Compressor) Process(ctx context.Context, inputs []string, outputDir string) (Result, error) {
	if len(inputs) == 0 {
		return Result{}, errors.New("no input files")
	}
	if outputDir == "" {
		return Result{}, errors.New("output directory is required")
	}
	if err := platform.CreateDirectoryIfNotExists(outputDir); err != nil {
		return Result{}, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	jobID := generateJobID()
	logger := c.logger.With("job_id", jobID)
	logger.Info("compression started", "inputs", len(inputs), "output_dir", outputDir)

	outputs := make([]string, len(inputs))
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, input := range inputs {
		g.Go(func() error {
			output, err := c.processOne(ctx, input, outputDir)
			if err != nil {
				logger.Warn("compression failed", "source", input, "error", err)
				mu.Lock()
				failed[input] = err
				mu.Unlock()
				return nil
			}
			outputs[i] = output
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Failed: len(failed)}
	if len(failed) > 0 {
		res.Errors = failed
	}
	for _, out := range outputs {
		if out != "" {
			res.Outputs = append(res.Outputs, out)
		}
	}
	res.Succeeded = len(res.Outputs)

	logger.Info("compression finished", "succeeded", res.Succeeded, "failed", res.Failed)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Compressor) processOne(ctx context.Context, input, outputDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if info, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("input file does not exist: %s", input)
	} else if info.IsDir() {
		return "", fmt.Errorf("input is a directory: %s", input)
	}

	output := generateOutputPath(input, outputDir)
	var progress func(int)
	if c.onProgress != nil {
		progress = func(p int) { c.onProgress(input, p) }
	}

	if err := c.transcoder.Transcode(ctx, input, output, progress); err != nil {
		if _, rmErr := c.remove(output); rmErr != nil {
			c.logger.Warn("failed to remove partial output", "path", output, "error", rmErr)
		}
		return "", err
	}
	if c.onProgress != nil {
		c.onProgress(input, 100)
	}
	return output, nil
}

// generateOutputPath places <name>-compressed.mp4 in outputDir, or next to
// the input when outputDir is empty
func generateOutputPath(inputPath, outputDir string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	if outputDir != "" {
		baseName = filepath.Join(outputDir, filepath.Base(baseName))
	}
	return baseName + CompressedSuffix + OutputExtensionMP4
}

// generateJobID uses UUID v7 so ids sort by creation time
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return JobIDPrefix + uuid.NewString()
	}
	return JobIDPrefix + id.String()
}
