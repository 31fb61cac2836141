// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

import (
	"fmt"
	"slices"
	"sync"

	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/keylist"
	"github.com/inkframe/inkframe/math32"
	"github.com/jinzhu/copier"
)

// ErrNotFound is returned for an element id that is not in the document.
var ErrNotFound = errors.New("document: element not found")

// Changes are the kinds of change that [Memory] notifies about.
type Changes int32

const (
	SelectionChanged Changes = iota
	ElementsChanged
	ViewportChanged
	LayoutChanged
)

func (c Changes) String() string {
	switch c {
	case SelectionChanged:
		return "selection"
	case ElementsChanged:
		return "elements"
	case ViewportChanged:
		return "viewport"
	case LayoutChanged:
		return "layout"
	}
	return fmt.Sprintf("Changes(%d)", int(c))
}

// Memory is an in-memory [Model]. It is safe for concurrent use.
// Values passed in and returned are deep copies.
//
// Change listeners added with [Memory.OnChange] are called after
// the lock is released, so they may read the document. Image
// references written by [Memory.WriteImageReference] do not
// notify, since they come from the overlay controller itself.
type Memory struct {
	mu        sync.RWMutex
	elements  keylist.List[string, *Element]
	selection Selection
	viewport  Viewport

	container math32.Box2
	surface   math32.Box2
	laidOut   bool

	listeners keylist.List[int, func(Changes)]
	nextID    int
}

// NewMemory returns a new empty document with a zoom of 1.
func NewMemory() *Memory {
	return &Memory{selection: Selection{}, viewport: Viewport{Zoom: 1}}
}

func cloneElement(el *Element) *Element {
	c := &Element{}
	errors.Log(copier.CopyWithOption(c, el, copier.Option{DeepCopy: true}))
	return c
}

// Elements returns a copy of all elements, in document order.
func (m *Memory) Elements() []Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	els := make([]Element, 0, m.elements.Len())
	for _, el := range m.elements.All() {
		els = append(els, *cloneElement(el))
	}
	return els
}

// Element returns a copy of the element with the given id.
func (m *Memory) Element(id string) (Element, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	el, ok := m.elements.AtTry(id)
	if !ok {
		return Element{}, false
	}
	return *cloneElement(el), true
}

// AddElements appends the elements, replacing any with the same id in place.
func (m *Memory) AddElements(els ...Element) {
	m.mu.Lock()
	for i := range els {
		m.elements.Set(els[i].ID, cloneElement(&els[i]))
	}
	m.mu.Unlock()
	m.notify(ElementsChanged)
}

// SetElements replaces all of the elements.
func (m *Memory) SetElements(els []Element) {
	m.mu.Lock()
	m.elements.Reset()
	for i := range els {
		m.elements.Set(els[i].ID, cloneElement(&els[i]))
	}
	m.mu.Unlock()
	m.notify(ElementsChanged)
}

// UpdateElement calls fn on the element with the given id,
// bumping its version.
func (m *Memory) UpdateElement(id string, fn func(el *Element)) error {
	m.mu.Lock()
	el, ok := m.elements.AtTry(id)
	if ok {
		fn(el)
		el.Touch()
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	m.notify(ElementsChanged)
	return nil
}

// MarkDeleted sets the deleted flag on the element with the given id,
// which is how the scene format removes elements.
func (m *Memory) MarkDeleted(id string) error {
	return m.UpdateElement(id, func(el *Element) { el.IsDeleted = true })
}

// RemoveElement removes the element with the given id entirely.
func (m *Memory) RemoveElement(id string) bool {
	m.mu.Lock()
	_, ok := m.elements.DeleteByKey(id)
	delete(m.selection, id)
	m.mu.Unlock()
	if ok {
		m.notify(ElementsChanged)
	}
	return ok
}

// Selection returns a copy of the selection.
func (m *Memory) Selection() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection.Clone()
}

// Select adds the given ids to the selection.
func (m *Memory) Select(ids ...string) {
	m.mu.Lock()
	if m.selection == nil {
		m.selection = Selection{}
	}
	for _, id := range ids {
		m.selection[id] = true
	}
	m.mu.Unlock()
	m.notify(SelectionChanged)
}

// Deselect removes the given ids from the selection.
func (m *Memory) Deselect(ids ...string) {
	m.mu.Lock()
	for _, id := range ids {
		delete(m.selection, id)
	}
	m.mu.Unlock()
	m.notify(SelectionChanged)
}

// SetSelection replaces the selection with exactly the given ids.
func (m *Memory) SetSelection(ids ...string) {
	m.mu.Lock()
	m.selection = Selection{}
	for _, id := range ids {
		m.selection[id] = true
	}
	m.mu.Unlock()
	m.notify(SelectionChanged)
}

// Viewport returns the view transform.
func (m *Memory) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// SetViewport sets the view transform.
func (m *Memory) SetViewport(vp Viewport) {
	m.mu.Lock()
	m.viewport = vp
	m.mu.Unlock()
	m.notify(ViewportChanged)
}

// SetLayout sets the bounds of the overlay container and of the
// drawing surface, both in window coordinates.
func (m *Memory) SetLayout(container, surface math32.Box2) {
	m.mu.Lock()
	m.container = container
	m.surface = surface
	m.laidOut = true
	m.mu.Unlock()
	m.notify(LayoutChanged)
}

// ClearLayout marks the document as not laid out.
func (m *Memory) ClearLayout() {
	m.mu.Lock()
	m.laidOut = false
	m.mu.Unlock()
	m.notify(LayoutChanged)
}

// ContainerBounds returns the container bounds, if laid out.
func (m *Memory) ContainerBounds() (math32.Box2, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.container, m.laidOut
}

// SurfaceOffset returns the surface position relative to the
// container, if laid out.
func (m *Memory) SurfaceOffset() (math32.Vector2, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.laidOut {
		return math32.Vector2{}, false
	}
	return m.surface.Min.Sub(m.container.Min), true
}

// WriteImageReference stores the data URI in the overlay metadata
// of the element with the given id. It does not notify listeners.
func (m *Memory) WriteImageReference(id, dataURI string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elements.AtTry(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	md, ok := el.Overlay()
	if !ok {
		return fmt.Errorf("document: element %q is not an overlay", id)
	}
	md.Snapshot = dataURI
	el.Touch()
	return nil
}

var _ Notifier = (*Memory)(nil)

// OnChange adds a function called after each change of the given
// kinds, or of every kind if none are given. The returned function
// removes it.
func (m *Memory) OnChange(fn func(Changes), kinds ...Changes) (remove func()) {
	if len(kinds) > 0 {
		inner := fn
		fn = func(c Changes) {
			if slices.Contains(kinds, c) {
				inner(c)
			}
		}
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners.Set(id, fn)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.listeners.DeleteByKey(id)
		m.mu.Unlock()
	}
}

func (m *Memory) notify(c Changes) {
	m.mu.RLock()
	fns := slices.Clone(m.listeners.Values)
	m.mu.RUnlock()
	for _, fn := range fns {
		fn(c)
	}
}
