package falsecolor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/falsecolor/imageutil"
)

// The batch covers every threshold in this range, ascending.
const (
	FirstBatchThreshold = 1
	LastBatchThreshold  = 254
)

// Encoder persists one rendered image. Implementations must accept
// concurrent calls for distinct paths.
type Encoder interface {
	Encode(img image.Image, path string) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(img image.Image, path string) error

// Encode calls f(img, path).
func (f EncoderFunc) Encode(img image.Image, path string) error {
	return f(img, path)
}

// BatchResult reports the outcome for one threshold. Err is nil when the
// image was written to Path.
type BatchResult struct {
	Threshold int
	Path      string
	Err       error
}

// BatchRenderer renders one image at every threshold from
// FirstBatchThreshold to LastBatchThreshold and hands each result to an
// Encoder.
type BatchRenderer struct {
	// Configuration options
	Workers     int
	FilePattern string

	encoder Encoder
	logger  *slog.Logger
}

// BatchOption is a functional option for configuring a BatchRenderer.
type BatchOption func(*BatchRenderer)

// WithWorkers bounds how many thresholds render at once.
func WithWorkers(n int) BatchOption {
	return func(b *BatchRenderer) {
		b.Workers = n
	}
}

// WithEncoder replaces the file encoder.
func WithEncoder(enc Encoder) BatchOption {
	return func(b *BatchRenderer) {
		b.encoder = enc
	}
}

// WithFilePattern sets the fmt pattern turning a threshold into a file
// name. It must contain exactly one integer verb.
func WithFilePattern(pattern string) BatchOption {
	return func(b *BatchRenderer) {
		b.FilePattern = pattern
	}
}

// WithBatchLogger sets the logger progress is reported to.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRenderer) {
		b.logger = logger
	}
}

// NewBatchRenderer creates a BatchRenderer. Defaults: one worker per CPU,
// files named "<threshold>.png", written by imageutil.SaveImage.
func NewBatchRenderer(opts ...BatchOption) *BatchRenderer {
	b := &BatchRenderer{
		Workers:     runtime.NumCPU(),
		FilePattern: "%d.png",
		encoder:     EncoderFunc(imageutil.SaveImage),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Render renders img at every batch threshold into dir, creating dir if
// needed. The returned slice holds one result per threshold in ascending
// order. A failed write is recorded in its result and the remaining
// thresholds still run; the returned error is reserved for invalid input,
// an unusable dir, or ctx ending early.
func (b *BatchRenderer) Render(ctx context.Context, img *imageutil.RGBAImage, saturation int, dir string) ([]BatchResult, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidArgument)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %w", imageutil.ErrEncode, err)
	}

	results := make([]BatchResult, LastBatchThreshold-FirstBatchThreshold+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Workers, 1))

	for threshold := FirstBatchThreshold; threshold <= LastBatchThreshold; threshold++ {
		res := &results[threshold-FirstBatchThreshold]
		res.Threshold = threshold
		res.Path = filepath.Join(dir, fmt.Sprintf(b.FilePattern, threshold))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Err = err
				return err
			}
			res.Err = b.renderOne(img, saturation, res.Threshold, res.Path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (b *BatchRenderer) renderOne(img *imageutil.RGBAImage, saturation, threshold int, path string) error {
	out, err := Render(img, saturation, threshold)
	if err != nil {
		return err
	}
	if err := b.encoder.Encode(out, path); err != nil {
		if !errors.Is(err, imageutil.ErrEncode) {
			err = fmt.Errorf("%w: %w", imageutil.ErrEncode, err)
		}
		b.logger.Error("failed to save", "threshold", threshold, "path", path, "error", err)
		return err
	}
	b.logger.Info("saved", "threshold", threshold, "of", LastBatchThreshold, "path", path)
	return nil
}

// RenderBatch renders img at every batch threshold into dir with default
// settings.
func RenderBatch(ctx context.Context, img *imageutil.RGBAImage, saturation int, dir string) ([]BatchResult, error) {
	return NewBatchRenderer().Render(ctx, img, saturation, dir)
}
