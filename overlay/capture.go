// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/transform"
	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/iox/imagex"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
	"github.com/inkframe/inkframe/widget"
)

// Rasterizer captures a widget to an image data URI.
// Capture must not change the geometry of the widget, and should
// return promptly once ctx is done.
type Rasterizer interface {
	Capture(ctx context.Context, w widget.Widget, logicalW, logicalH float32) (string, error)
}

// RasterizerFunc is a function that implements [Rasterizer].
type RasterizerFunc func(ctx context.Context, w widget.Widget, logicalW, logicalH float32) (string, error)

func (f RasterizerFunc) Capture(ctx context.Context, w widget.Widget, logicalW, logicalH float32) (string, error) {
	return f(ctx, w, logicalW, logicalH)
}

// supersample is the most a capture is rendered above
// MaxCaptureDim before it is downscaled.
const supersample = 2

// PaintRasterizer renders widgets offscreen with [paint.Painter].
type PaintRasterizer struct {

	// Background is drawn under the widget if non-nil.
	// JPEG captures always get an opaque background.
	Background color.Color

	mu       sync.Mutex
	settings Settings
}

// NewPaintRasterizer returns a new [PaintRasterizer] for the settings.
func NewPaintRasterizer(s Settings) *PaintRasterizer {
	return &PaintRasterizer{settings: s}
}

// ApplySettings sets the settings for later captures.
func (pr *PaintRasterizer) ApplySettings(s Settings) {
	pr.mu.Lock()
	pr.settings = s
	pr.mu.Unlock()
}

// Capture waits SettleDelay, renders the widget at its logical size
// times CaptureScale, waits SettleDelay again, and encodes the result
// in CaptureFormat. Results larger than MaxCaptureDim are downscaled.
func (pr *PaintRasterizer) Capture(ctx context.Context, w widget.Widget, logicalW, logicalH float32) (string, error) {
	pr.mu.Lock()
	s := pr.settings
	bg := pr.Background
	pr.mu.Unlock()

	if !math32.IsFinite(logicalW) || !math32.IsFinite(logicalH) || logicalW <= 0 || logicalH <= 0 {
		return "", fmt.Errorf("widget has no size (%v x %v)", logicalW, logicalH)
	}
	format, err := s.Format()
	if err != nil {
		return "", err
	}
	if format == imagex.JPEG && bg == nil {
		bg = color.White
	}
	settle := s.SettleDelay.D()
	if err := sleep(ctx, settle); err != nil {
		return "", err
	}

	scale := s.CaptureScale
	limit := float32(s.MaxCaptureDim * supersample)
	if big := max(logicalW, logicalH) * scale; big > limit {
		scale *= limit / big
	}
	img, err := render(ctx, w, logicalW, logicalH, scale, bg)
	if err != nil {
		return "", err
	}
	if err := sleep(ctx, settle); err != nil {
		return "", err
	}
	return imagex.ToDataURI(fitMax(img, s.MaxCaptureDim), format)
}

// render draws the widget on a new painter carrying ctx, on its own
// goroutine. It returns once ctx is done even if Render has not, and
// a Render that ignores ctx keeps running until it finishes.
func render(ctx context.Context, w widget.Widget, logicalW, logicalH, scale float32, bg color.Color) (*image.RGBA, error) {
	pw := max(int(math32.Ceil(logicalW*scale)), 1)
	ph := max(int(math32.Ceil(logicalH*scale)), 1)
	type result struct {
		img *image.RGBA
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("rendering widget: %v", r)}
			}
		}()
		pc := paint.NewPainter(pw, ph).WithContext(ctx)
		if bg != nil {
			pc.Clear(bg)
		}
		w.Render(pc.Sub(math32.Vector2{}, math32.Vec2(float32(pw), float32(ph)), scale))
		done <- result{img: pc.Image}
	}()
	select {
	case r := <-done:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fitMax downscales img so that neither side exceeds maxDim.
func fitMax(img *image.RGBA, maxDim int) *image.RGBA {
	sz := img.Bounds().Size()
	if sz.X <= maxDim && sz.Y <= maxDim {
		return img
	}
	f := float64(maxDim) / float64(max(sz.X, sz.Y))
	nw := max(int(float64(sz.X)*f+0.5), 1)
	nh := max(int(float64(sz.Y)*f+0.5), 1)
	return transform.Resize(img, min(nw, maxDim), min(nh, maxDim), transform.Linear)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.Join(errSettle, ctx.Err())
	}
}

var errSettle = errors.New("interrupted while settling")
