// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paint

import (
	"image"
	"image/color"
	"strings"

	"github.com/inkframe/inkframe/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TextStyle is the style of a run of text, in logical units.
type TextStyle struct {
	Family Families
	Size   float32
	Color  color.Color
}

// LineHeight returns the logical height of one line of text.
func (ts TextStyle) LineHeight() float32 {
	return ts.Size * 1.3
}

// DrawText draws a single line of text with its top-left
// corner at the given logical point.
func (pc *Painter) DrawText(text string, pos math32.Vector2, ts TextStyle) {
	size := ts.Size * pc.Scale
	FaceLock(ts.Family, size, func(f font.Face) {
		p := pc.Point(pos)
		asc := f.Metrics().Ascent
		clip := pc.Image.SubImage(pc.Clip).(*image.RGBA)
		d := &font.Drawer{
			Dst:  clip,
			Src:  image.NewUniform(ts.Color),
			Face: f,
			Dot:  fixed.Point26_6{X: fixed.I(p.X), Y: fixed.I(p.Y) + asc},
		}
		d.DrawString(text)
	})
}

// MeasureText returns the logical width of the text.
func MeasureText(text string, ts TextStyle) float32 {
	var w fixed.Int26_6
	FaceLock(ts.Family, ts.Size, func(f font.Face) {
		w = font.MeasureString(f, text)
	})
	return float32(w) / 64
}

// WrapText splits text into lines that fit within the given logical
// width, breaking at spaces. Existing newlines are kept. A word wider
// than the width gets a line of its own.
func WrapText(text string, width float32, ts TextStyle) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if MeasureText(next, ts) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	return lines
}
