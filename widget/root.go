// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/inkframe/inkframe/base/keylist"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
)

// InteractiveColor is the border color of interactive widgets.
var InteractiveColor = color.RGBA{0x63, 0x66, 0xf1, 0xff}

// Root is the container that overlay widgets are mounted in, above
// the document surface. Children are kept in mount order, which is
// also stacking order: the last mounted is on top.
// It is safe for concurrent use.
type Root struct {
	mu       sync.RWMutex
	children keylist.List[string, Widget]
}

// NewRoot returns a new empty [Root].
func NewRoot() *Root {
	return &Root{}
}

// Mount adds the widget on top under the given id.
func (r *Root) Mount(id string, w Widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.children.Add(id, w); err != nil {
		return fmt.Errorf("widget.Root: mounting %q: %w", id, err)
	}
	return nil
}

// Unmount removes the widget with the given id, returning it.
func (r *Root) Unmount(id string) (Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.children.DeleteByKey(id)
}

// Child returns the widget with the given id.
func (r *Root) Child(id string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.children.AtTry(id)
}

// Len returns the number of mounted widgets.
func (r *Root) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.children.Len()
}

// IDs returns the ids of the mounted widgets, bottom first.
func (r *Root) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, r.children.Len())
	for id := range r.children.All() {
		ids = append(ids, id)
	}
	return ids
}

// WidgetAt returns the topmost visible widget whose box contains
// the given viewport point, if any. If filter is non-nil, only
// widgets for which it returns true are considered.
func (r *Root) WidgetAt(p math32.Vector2, filter func(id string, w Widget) bool) (string, Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, w := range r.children.Backward() {
		wb := w.AsWidget()
		if !wb.IsVisible() || !wb.Box().ContainsPoint(p) {
			continue
		}
		if filter != nil && !filter(id, w) {
			continue
		}
		return id, w, true
	}
	return "", nil, false
}

// Render draws all visible widgets at their viewport boxes, in
// stacking order, with a border on interactive ones.
func (r *Root) Render(pc *paint.Painter) {
	r.mu.RLock()
	ws := make([]Widget, 0, r.children.Len())
	for _, w := range r.children.All() {
		ws = append(ws, w)
	}
	r.mu.RUnlock()
	for _, w := range ws {
		RenderAt(pc, w)
	}
}

// RenderAt draws the widget at its viewport box on pc, if visible.
func RenderAt(pc *paint.Painter, w Widget) {
	wb := w.AsWidget()
	if !wb.IsVisible() {
		return
	}
	box, logical := wb.Box(), wb.LogicalSize()
	if box.IsEmpty() || logical.X <= 0 || logical.Y <= 0 {
		return
	}
	sp := pc.Sub(box.Min, box.Size(), renderScale(box, logical))
	w.Render(sp)
	if wb.IsInteractive() {
		pc.StrokeBox(box.Min, box.Size(), 2, InteractiveColor, 0)
	}
}
