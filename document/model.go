// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

import (
	"maps"
	"slices"

	"github.com/inkframe/inkframe/math32"
)

// Viewport is the view transform of the document surface.
type Viewport struct {
	Zoom    float32
	ScrollX float32
	ScrollY float32
}

// Scale returns the zoom factor, treating a zero, negative
// or non-finite zoom as 1.
func (vp Viewport) Scale() float32 {
	if vp.Zoom <= 0 || math32.IsNaN(vp.Zoom) || math32.IsInf(vp.Zoom, 0) {
		return 1
	}
	return vp.Zoom
}

// Selection is the set of selected element ids.
type Selection map[string]bool

// Has returns whether id is selected.
func (s Selection) Has(id string) bool {
	return s[id]
}

// IDs returns the selected ids in sorted order.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id, sel := range s {
		if sel {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a copy of the selection.
func (s Selection) Clone() Selection {
	if s == nil {
		return Selection{}
	}
	return maps.Clone(s)
}

// Model is the document that overlays are bound to.
// All methods must be safe for concurrent use.
type Model interface {

	// Elements returns the current scene elements.
	Elements() []Element

	// Selection returns the currently selected element ids.
	Selection() Selection

	// Viewport returns the current view transform.
	Viewport() Viewport

	// ContainerBounds returns the bounds of the container that
	// overlays are positioned in, and false if it is not laid out.
	ContainerBounds() (math32.Box2, bool)

	// SurfaceOffset returns the offset of the drawing surface within
	// the container, and false if it is not laid out.
	SurfaceOffset() (math32.Vector2, bool)

	// WriteImageReference stores an image data URI on the element
	// with the given id. It must not call back into the caller.
	WriteImageReference(id, dataURI string) error
}

// Notifier is implemented by models that report their changes.
type Notifier interface {

	// OnChange adds a function called after each change of the given
	// kinds, or of every kind if none are given, on the goroutine that
	// made the change. The returned function removes it.
	OnChange(fn func(Changes), kinds ...Changes) (remove func())
}
