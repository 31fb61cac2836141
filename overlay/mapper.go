// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/math32"
)

// MapToViewport maps a box in scene coordinates to viewport pixels,
// for the given view transform and surface offset within the container:
//
//	x' = (x + scrollX) * zoom + offsetX
//	w' = w * zoom
//
// and likewise for y and h.
func MapToViewport(scene math32.Box2, vp document.Viewport, offset math32.Vector2) math32.Box2 {
	z := vp.Scale()
	scroll := math32.Vec2(vp.ScrollX, vp.ScrollY)
	pos := scene.Min.Add(scroll).MulScalar(z).Add(offset)
	return math32.B2FromSize(pos, scene.Size().MulScalar(z))
}

// ElementBox returns the scene box of the element.
func ElementBox(el *document.Element) math32.Box2 {
	return el.Box()
}

// LayoutOffset returns the surface offset of the model, or a zero
// offset and a [*MissingLayoutError] if it is not laid out.
func LayoutOffset(m document.Model) (math32.Vector2, error) {
	if _, ok := m.ContainerBounds(); !ok {
		return math32.Vector2{}, &MissingLayoutError{What: "container"}
	}
	off, ok := m.SurfaceOffset()
	if !ok {
		return math32.Vector2{}, &MissingLayoutError{What: "surface"}
	}
	return off, nil
}
