package scanning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"

	"github.com/prajwal9924/bill-reader-vision-buddy/internal/extract"
	"github.com/prajwal9924/bill-reader-vision-buddy/internal/ocr"
	"github.com/prajwal9924/bill-reader-vision-buddy/internal/preprocess"
)

// ErrRecognize reports an OCR backend failure.
var ErrRecognize = errors.New("recognizing bill text")

// Stage identifies a step of the scanning pipeline.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageNormalize Stage = "normalize"
	StageRecognize Stage = "recognize"
	StageExtract   Stage = "extract"
	StageDone      Stage = "done"
)

// ProgressFunc receives the stage about to run and the fraction of the
// pipeline completed so far.
type ProgressFunc func(stage Stage, fraction float64)

// Scanner defines the interface for bill scanning operations.
type Scanner interface {
	// ScanBill reads a bill image or PDF and extracts its fields.
	ScanBill(ctx context.Context, data []byte, contentType string) (*extract.Result, error)
	// Close closes the scanner and releases resources.
	Close() error
}

// Pipeline implements the Scanner interface: decode, normalize, recognize,
// extract, in that order. The pipeline itself is synchronous; callers that
// need scans off their own goroutine wrap ScanBill and observe progress
// through the callback.
type Pipeline struct {
	engine     ocr.Engine
	normalizer *preprocess.Normalizer
	progress   ProgressFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress registers a callback invoked as each stage starts.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.progress = fn
		}
	}
}

// WithWorkers caps the preprocessing parallelism.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.normalizer = preprocess.NewNormalizer(preprocess.WithWorkers(n))
	}
}

// NewPipeline creates a new Pipeline over the given OCR engine.
func NewPipeline(engine ocr.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:     engine,
		normalizer: preprocess.NewNormalizer(),
		progress:   func(Stage, float64) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ScanBill runs the full pipeline over one uploaded bill.
func (p *Pipeline) ScanBill(ctx context.Context, data []byte, contentType string) (*extract.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.progress(StageDecode, 0)
	img, err := DecodeImage(data, contentType)
	if err != nil {
		return nil, err
	}

	p.progress(StageNormalize, 0.25)
	normalized := p.normalizer.Normalize(upscaleIfSmall(img))

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, fmt.Errorf("encoding normalized image: %w", err)
	}

	p.progress(StageRecognize, 0.5)
	text, err := p.engine.Recognize(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognize, err)
	}

	p.progress(StageExtract, 0.75)
	result := extract.Extract(text)

	p.progress(StageDone, 1)
	return result, nil
}

// Close closes the underlying OCR engine.
func (p *Pipeline) Close() error {
	return p.engine.Close()
}
