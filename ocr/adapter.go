package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/wudi/idmkit/normalize/layered"
)

// InputFromImage encodes an in-memory image as a PNG OCR input.
func InputFromImage(id string, img image.Image, opts ...InputOption) (Input, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode image: %w", err)
	}
	in := Input{
		ID:     id,
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

// LayerRecognizer bridges an Engine into the layered normalizer's recognizer
// contract: text-classified layers are encoded, submitted, and the recognized
// words come back as positioned text regions.
type LayerRecognizer struct {
	engine Engine
	opts   []InputOption
}

// NewLayerRecognizer wraps an engine; the options apply to every submission.
func NewLayerRecognizer(engine Engine, opts ...InputOption) *LayerRecognizer {
	return &LayerRecognizer{engine: engine, opts: opts}
}

// Recognize implements layered.Recognizer. Each recognized line becomes one
// region; lines without positional data fall back to the image bounds.
func (r *LayerRecognizer) Recognize(ctx context.Context, img image.Image) ([]layered.TextRegion, error) {
	in, err := InputFromImage("layer", img, r.opts...)
	if err != nil {
		return nil, err
	}
	result, err := r.engine.Recognize(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("recognize layer: %w", err)
	}

	b := img.Bounds()
	whole := Region{
		X: float64(b.Min.X), Y: float64(b.Min.Y),
		Width: float64(b.Dx()), Height: float64(b.Dy()),
	}

	var regions []layered.TextRegion
	for _, block := range result.Blocks {
		for _, line := range block.Lines {
			if line.Text == "" {
				continue
			}
			bounds := line.Bounds
			if bounds.IsEmpty() {
				bounds = whole
			}
			regions = append(regions, layered.TextRegion{
				Text:       line.Text,
				BBox:       [4]float64{bounds.X, bounds.Y, bounds.X + bounds.Width, bounds.Y + bounds.Height},
				Confidence: line.Confidence,
			})
		}
	}
	if len(regions) == 0 && result.PlainText != "" {
		regions = append(regions, layered.TextRegion{Text: result.PlainText, BBox: [4]float64{whole.X, whole.Y, whole.X + whole.Width, whole.Y + whole.Height}})
	}
	return regions, nil
}
