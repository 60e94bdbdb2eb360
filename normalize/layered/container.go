package layered

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/tiff"

	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/normalize"
)

// NormalizeContainer decodes an image container and normalizes every frame.
// Animated GIFs yield one CanvasUnit per coalesced frame; single-frame
// formats (PNG, JPEG, TIFF) yield exactly one unit. The container has no
// layer metadata, so each frame gets the synthesized Base layer.
func (n *Normalizer) NormalizeContainer(ctx context.Context, name string, r io.Reader, format string) ([]*idm.CanvasUnit, []normalize.Warning, error) {
	switch strings.ToLower(format) {
	case "gif":
		return n.normalizeGIF(ctx, name, r)
	case "tiff", "tif":
		img, err := tiff.Decode(r)
		if err != nil {
			return nil, nil, fmt.Errorf("decode tiff %q: %w", name, err)
		}
		return n.normalizeFrame(ctx, name, img)
	default:
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s %q: %w", format, name, err)
		}
		return n.normalizeFrame(ctx, name, img)
	}
}

func (n *Normalizer) normalizeFrame(ctx context.Context, name string, img image.Image) ([]*idm.CanvasUnit, []normalize.Warning, error) {
	unit, warnings, err := n.NormalizeCanvas(ctx, Source{Name: name, Flattened: img})
	if err != nil {
		return nil, warnings, err
	}
	return []*idm.CanvasUnit{unit}, warnings, nil
}

// normalizeGIF coalesces frames: each frame paints over the accumulated
// canvas before normalization, so partial-update frames come out whole.
func (n *Normalizer) normalizeGIF(ctx context.Context, name string, r io.Reader) ([]*idm.CanvasUnit, []normalize.Warning, error) {
	anim, err := gif.DecodeAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("decode gif %q: %w", name, err)
	}
	if len(anim.Image) == 0 {
		return nil, nil, fmt.Errorf("gif %q has no frames", name)
	}

	width, height := anim.Config.Width, anim.Config.Height
	if width == 0 || height == 0 {
		b := anim.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	var units []*idm.CanvasUnit
	var warnings []normalize.Warning
	for i, frame := range anim.Image {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		flattened := image.NewRGBA(canvas.Bounds())
		draw.Draw(flattened, flattened.Bounds(), canvas, image.Point{}, draw.Src)

		frameName := name
		if len(anim.Image) > 1 {
			frameName = fmt.Sprintf("%s#frame-%d", name, i)
		}
		unit, frameWarnings, err := n.NormalizeCanvas(ctx, Source{Name: frameName, Flattened: flattened})
		warnings = append(warnings, frameWarnings...)
		if err != nil {
			return nil, warnings, fmt.Errorf("frame %d: %w", i, err)
		}
		units = append(units, unit)
	}
	return units, warnings, nil
}
