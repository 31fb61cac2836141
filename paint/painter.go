// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paint

import (
	"context"
	"image"
	"image/color"

	"github.com/inkframe/inkframe/math32"
	"golang.org/x/image/draw"
)

// Painter draws onto an [image.RGBA] in logical coordinates,
// which are mapped to pixels by an offset and a uniform scale.
// Sub-painters made with [Painter.Sub] share the same image.
type Painter struct {

	// Image is the image being drawn on.
	Image *image.RGBA

	// Offset is the pixel position of the logical origin.
	Offset math32.Vector2

	// Scale is the number of pixels per logical unit.
	Scale float32

	// Clip is the pixel region that drawing is limited to.
	Clip image.Rectangle

	// ctx bounds work done while rendering, such as loading.
	ctx context.Context
}

// NewPainter returns a new [Painter] on a new transparent image
// of the given pixel size, with a scale of 1.
func NewPainter(width, height int) *Painter {
	return NewPainterFromRGBA(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewPainterFromRGBA returns a new [Painter] that draws directly
// on the given image, with a scale of 1.
func NewPainterFromRGBA(img *image.RGBA) *Painter {
	return &Painter{Image: img, Scale: 1, Clip: img.Rect}
}

// WithContext returns a copy of pc whose [Painter.Context] is ctx.
func (pc *Painter) WithContext(ctx context.Context) *Painter {
	cp := *pc
	cp.ctx = ctx
	return &cp
}

// Context returns the context that rendering should respect,
// which is [context.Background] unless set with [Painter.WithContext].
func (pc *Painter) Context() context.Context {
	if pc.ctx == nil {
		return context.Background()
	}
	return pc.ctx
}

// Sub returns a painter whose logical origin is at pos in the logical
// coordinates of pc, scaled by scale relative to pc, and clipped to
// size logical units.
func (pc *Painter) Sub(pos, size math32.Vector2, scale float32) *Painter {
	sp := &Painter{Image: pc.Image, ctx: pc.ctx}
	sp.Offset = pc.Offset.Add(pos.MulScalar(pc.Scale))
	sp.Scale = pc.Scale * scale
	sp.Clip = pc.Rect(pos, size).Intersect(pc.Clip)
	return sp
}

// Rect returns the pixel rectangle for the given logical box.
func (pc *Painter) Rect(pos, size math32.Vector2) image.Rectangle {
	p0 := pc.Offset.Add(pos.MulScalar(pc.Scale))
	p1 := p0.Add(size.MulScalar(pc.Scale))
	return image.Rectangle{Min: p0.ToPointFloor(), Max: p1.ToPointCeil()}.Canon()
}

// Point returns the pixel point for the given logical point.
func (pc *Painter) Point(p math32.Vector2) image.Point {
	return pc.Offset.Add(p.MulScalar(pc.Scale)).ToPoint()
}

// Clear fills the whole clip region with the given color, replacing
// what is there.
func (pc *Painter) Clear(c color.Color) {
	draw.Draw(pc.Image, pc.Clip, image.NewUniform(c), image.Point{}, draw.Src)
}

// FillBox fills the given logical box with the given color,
// blending over what is there.
func (pc *Painter) FillBox(pos, size math32.Vector2, c color.Color) {
	r := pc.Rect(pos, size).Intersect(pc.Clip)
	if r.Empty() {
		return
	}
	draw.Draw(pc.Image, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeBox draws a border of the given logical width inside the
// given logical box. If dash is > 0, the border is dashed with
// dashes and gaps of that logical length.
func (pc *Painter) StrokeBox(pos, size math32.Vector2, width float32, c color.Color, dash float32) {
	w := max(1, int(math32.Round(width*pc.Scale)))
	r := pc.Rect(pos, size)
	if r.Empty() {
		return
	}
	d := 0
	if dash > 0 {
		d = max(1, int(math32.Round(dash*pc.Scale)))
	}
	uc := image.NewUniform(c)
	fill := func(rr image.Rectangle) {
		rr = rr.Intersect(pc.Clip)
		if !rr.Empty() {
			draw.Draw(pc.Image, rr, uc, image.Point{}, draw.Over)
		}
	}
	horiz := func(y int) {
		for x := r.Min.X; x < r.Max.X; {
			end := r.Max.X
			if d > 0 {
				end = min(x+d, r.Max.X)
			}
			fill(image.Rect(x, y, end, y+w))
			if d == 0 {
				break
			}
			x = end + d
		}
	}
	vert := func(x int) {
		for y := r.Min.Y + w; y < r.Max.Y-w; {
			end := r.Max.Y - w
			if d > 0 {
				end = min(y+d, r.Max.Y-w)
			}
			fill(image.Rect(x, y, x+w, end))
			if d == 0 {
				break
			}
			y = end + d
		}
	}
	horiz(r.Min.Y)
	horiz(r.Max.Y - w)
	vert(r.Min.X)
	vert(r.Max.X - w)
}

// DrawImageScaled draws the image scaled to fill the given logical box.
func (pc *Painter) DrawImageScaled(img image.Image, pos, size math32.Vector2) {
	r := pc.Rect(pos, size)
	if r.Empty() || img == nil {
		return
	}
	sb := img.Bounds()
	if r.Size() == sb.Size() {
		cr := r.Intersect(pc.Clip)
		draw.Draw(pc.Image, cr, img, sb.Min.Add(cr.Min.Sub(r.Min)), draw.Over)
		return
	}
	draw.CatmullRom.Scale(pc.Image, r, img, sb, draw.Over, &draw.Options{DstMask: clipMask(pc.Clip)})
}

// DrawImageFit draws the image scaled to fit inside the given logical
// box, keeping its aspect ratio and centering it.
func (pc *Painter) DrawImageFit(img image.Image, pos, size math32.Vector2) {
	if img == nil {
		return
	}
	sb := img.Bounds()
	if sb.Empty() || size.X <= 0 || size.Y <= 0 {
		return
	}
	isz := math32.FromPoint(sb.Size())
	s := min(size.X/isz.X, size.Y/isz.Y)
	fsz := isz.MulScalar(s)
	fpos := pos.Add(size.Sub(fsz).MulScalar(0.5))
	pc.DrawImageScaled(img, fpos, fsz)
}

// clipMask returns a mask that limits drawing to r.
func clipMask(r image.Rectangle) image.Image {
	return &rectMask{r}
}

type rectMask struct {
	r image.Rectangle
}

func (m *rectMask) ColorModel() color.Model { return color.AlphaModel }
func (m *rectMask) Bounds() image.Rectangle { return m.r }
func (m *rectMask) At(x, y int) color.Color {
	if image.Pt(x, y).In(m.r) {
		return color.Alpha{255}
	}
	return color.Alpha{0}
}
