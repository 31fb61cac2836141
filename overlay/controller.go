// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overlay keeps live widgets in sync with the placeholder
// elements of a document. A widget is mounted while its placeholder
// is selected, follows the document viewport, and is captured to an
// image that is written back to the document when it is deselected.
package overlay

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/keylist"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/widget"
)

// Controller manages the lifecycle of overlay widgets for a document.
// All of its methods are safe for concurrent use; state transitions
// happen one at a time, in call order. Captures run on their own
// goroutines and only take effect if the item has not changed since.
type Controller struct {
	mu sync.Mutex

	model      document.Model
	factory    widget.Factory
	rasterizer Rasterizer
	root       *widget.Root
	settings   Settings
	logger     *slog.Logger
	onSnapshot func(id, uri string)

	// active items, in creation order.
	active keylist.List[string, *Item]

	// pending items, being captured.
	pending map[string]*Item

	readOnly bool
	closed   bool
	router   *Router

	// unfollow removes the document listener added by Follow.
	unfollow func()

	ctx      context.Context
	cancel   context.CancelFunc
	captures sync.WaitGroup
}

// Option is a functional option for [New].
type Option func(c *Controller)

// WithFactory sets the factory that builds widgets.
// The default is a [widget.DefaultFactory] with an empty registry.
func WithFactory(f widget.Factory) Option {
	return func(c *Controller) { c.factory = f }
}

// WithRasterizer sets the rasterizer that captures snapshots.
// The default is a [PaintRasterizer].
func WithRasterizer(r Rasterizer) Option {
	return func(c *Controller) { c.rasterizer = r }
}

// WithRoot sets the root that widgets are mounted in.
func WithRoot(r *widget.Root) Option {
	return func(c *Controller) { c.root = r }
}

// WithSettings sets the settings.
func WithSettings(s Settings) Option {
	return func(c *Controller) { c.settings = s }
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithSnapshotHandler sets a function called after each snapshot is
// written to the document. It is called with the controller locked,
// and must not call back into the controller.
func WithSnapshotHandler(fn func(id, uri string)) Option {
	return func(c *Controller) { c.onSnapshot = fn }
}

// settingsApplier is implemented by rasterizers that use [Settings].
type settingsApplier interface {
	ApplySettings(s Settings)
}

// New returns a new [Controller] for the given document.
func New(model document.Model, opts ...Option) *Controller {
	c := &Controller{model: model, settings: DefaultSettings(), pending: map[string]*Item{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.factory == nil {
		c.factory = widget.NewDefaultFactory(widget.NewRegistry())
	}
	if c.rasterizer == nil {
		c.rasterizer = NewPaintRasterizer(c.settings)
	} else if sa, ok := c.rasterizer.(settingsApplier); ok {
		sa.ApplySettings(c.settings)
	}
	if c.root == nil {
		c.root = widget.NewRoot()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Root returns the root that widgets are mounted in.
func (c *Controller) Root() *widget.Root {
	return c.root
}

// Settings returns the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetSettings replaces the settings, if they are valid.
// Captures already running keep the settings they started with.
func (c *Controller) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	if sa, ok := c.rasterizer.(settingsApplier); ok {
		sa.ApplySettings(s)
	}
	c.logger.Info("overlay settings updated")
	return nil
}

// BatchCreate returns the placeholder elements for the given resources,
// for the host to add to the document. Widgets are not created until
// the placeholders are selected. Resources with a duplicate or missing
// id, and those the factory cannot build, are skipped and logged.
func (c *Controller) BatchCreate(descs []document.Descriptor) []document.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	supports, _ := c.factory.(interface {
		Supports(d document.Descriptor) error
	})
	seen := map[string]bool{}
	els := make([]document.Element, 0, len(descs))
	for _, d := range descs {
		switch {
		case d.ID == "":
			c.logger.Warn("overlay: skipping resource without id", "kind", d.Kind)
			continue
		case seen[d.ID] || c.stateLocked(d.ID) != Inactive:
			c.logger.Warn("overlay: skipping duplicate resource", "id", d.ID)
			continue
		}
		if supports != nil {
			if err := supports.Supports(d); err != nil {
				c.logger.Warn("overlay: skipping resource", "id", d.ID, "err", err)
				continue
			}
		}
		seen[d.ID] = true
		els = append(els, document.NewPlaceholder(d, c.settings.DefaultSize))
	}
	return els
}

// Reconcile brings the items in line with the document: selected
// overlay placeholders that are present and not deleted get an active
// item, created or resurrected, and active items whose placeholder is
// no longer selected or present start their removal. It ends by
// updating positions.
func (c *Controller) Reconcile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	els := c.model.Elements()
	sel := c.model.Selection()

	var want []*document.Element
	wanted := map[string]bool{}
	for i := range els {
		el := &els[i]
		md, ok := el.Overlay()
		if !ok || el.IsDeleted || !sel.Has(el.ID) || wanted[md.ID] {
			continue
		}
		wanted[md.ID] = true
		want = append(want, el)
	}

	for _, el := range want {
		id := el.CustomData.ID
		if c.active.Has(id) {
			continue
		}
		if it, ok := c.pending[id]; ok {
			c.resurrect(it, el)
			continue
		}
		c.create(el)
	}
	for _, id := range slices.Clone(c.active.Keys) {
		if !wanted[id] {
			c.beginRemoval(c.active.At(id))
		}
	}
	c.updatePositionsLocked(els)
}

// create builds and mounts a new active item for the placeholder.
func (c *Controller) create(el *document.Element) {
	d, _ := document.DescriptorFromElement(el)
	w, err := c.factory.Create(d)
	if err != nil {
		var uerr *widget.UnsupportedKindError
		if errors.As(err, &uerr) {
			c.logger.Warn("overlay: unsupported resource", "id", d.ID, "err", err)
		} else {
			c.logger.Error("overlay: creating widget", "id", d.ID, "err", err)
		}
		return
	}
	if err := c.root.Mount(d.ID, w); err != nil {
		c.logger.Error("overlay: mounting widget", "id", d.ID, "err", err)
		c.factory.Destroy(w)
		return
	}
	wb := w.AsWidget()
	wb.SetInteractive(false)
	wb.AddClass(widget.ClassSelected)
	it := &Item{ID: d.ID, Kind: d.Kind, ElementID: el.ID, Widget: w, State: Active}
	c.active.Set(d.ID, it)
	c.logger.Debug("overlay: mounted", "id", d.ID, "kind", d.Kind)
}

// resurrect moves a pending item back to active, keeping its widget,
// and stops its capture.
func (c *Controller) resurrect(it *Item, el *document.Element) {
	delete(c.pending, it.ID)
	it.stopCapture()
	it.generation++
	it.ElementID = el.ID
	it.State = Active
	c.active.Set(it.ID, it)
	it.Widget.AsWidget().AddClass(widget.ClassSelected)
	c.applyInteractive(it)
	c.logger.Debug("overlay: resurrected", "id", it.ID)
}

// beginRemoval moves an active item to pending and starts its capture.
func (c *Controller) beginRemoval(it *Item) {
	c.active.DeleteByKey(it.ID)
	it.generation++
	it.State = PendingRemoval
	c.pending[it.ID] = it
	wb := it.Widget.AsWidget()
	wb.SetInteractive(false)
	wb.RemoveClass(widget.ClassSelected)

	gen := it.generation
	logical := wb.LogicalSize()
	ctx, cancel := context.WithTimeout(c.ctx, c.settings.CaptureTimeout.D())
	it.cancel = cancel
	c.captures.Add(1)
	go c.capture(ctx, it.ID, gen, it.Widget, logical.X, logical.Y)
	c.logger.Debug("overlay: capturing", "id", it.ID, "generation", gen)
}

// capture runs the rasterizer without the lock, then applies the result.
// ctx is cancelled when the item is resurrected or destroyed.
func (c *Controller) capture(ctx context.Context, id string, gen uint64, w widget.Widget, lw, lh float32) {
	defer c.captures.Done()
	uri, err := c.rasterizer.Capture(ctx, w, lw, lh)
	if err != nil {
		var cerr *CaptureError
		if !errors.As(err, &cerr) {
			err = &CaptureError{ID: id, Err: err}
		}
	}
	c.finishCapture(id, gen, uri, err)
}

// finishCapture writes back the snapshot and destroys the item, if it
// is still pending with the same generation.
func (c *Controller) finishCapture(id string, gen uint64, uri string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.pending[id]
	if !ok || it.generation != gen {
		c.logger.Debug("overlay: dropping stale capture", "id", id, "generation", gen)
		return
	}
	if err != nil {
		c.logger.Warn("overlay: capture failed", "id", id, "err", err)
	} else if werr := c.model.WriteImageReference(it.ElementID, uri); werr != nil {
		c.logger.Error("overlay: writing snapshot", "id", id, "element", it.ElementID, "err", werr)
	} else if c.onSnapshot != nil {
		c.onSnapshot(id, uri)
	}
	c.destroyLocked(it)
}

// destroyLocked removes the item from all sets, unmounts its widget
// and destroys it.
func (c *Controller) destroyLocked(it *Item) {
	if it.State == PendingRemoval {
		it.generation++
	}
	it.stopCapture()
	delete(c.pending, it.ID)
	c.active.DeleteByKey(it.ID)
	it.State = Inactive
	c.root.Unmount(it.ID)
	c.factory.Destroy(it.Widget)
	c.logger.Debug("overlay: destroyed", "id", it.ID)
}

// UpdatePositions maps the placeholder of every active item to the
// viewport and applies it to the widget. Items whose placeholder is
// deleted or missing start their removal.
func (c *Controller) UpdatePositions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.updatePositionsLocked(c.model.Elements())
}

func (c *Controller) updatePositionsLocked(els []document.Element) {
	if c.active.Len() == 0 {
		return
	}
	off, err := LayoutOffset(c.model)
	if err != nil {
		c.logger.Debug("overlay: using zero offset", "err", err)
	}
	vp := c.model.Viewport()
	byID := overlayIndex(els)

	var gone []*Item
	for id, it := range c.active.All() {
		el, ok := byID[id]
		if !ok || el.IsDeleted {
			gone = append(gone, it)
			continue
		}
		it.ElementID = el.ID
		box := el.Box()
		it.Widget.AsWidget().SetGeometry(MapToViewport(box, vp, off), box.Size())
	}
	for _, it := range gone {
		c.beginRemoval(it)
	}
}

// overlayIndex returns the overlay placeholders by overlay id.
func overlayIndex(els []document.Element) map[string]*document.Element {
	byID := make(map[string]*document.Element, len(els))
	for i := range els {
		if md, ok := els[i].Overlay(); ok {
			if prev, dup := byID[md.ID]; dup && !prev.IsDeleted {
				continue
			}
			byID[md.ID] = &els[i]
		}
	}
	return byID
}

// SyncWithElements destroys every active or pending item whose
// placeholder is deleted or missing, whatever the selection,
// without capturing it.
func (c *Controller) SyncWithElements() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	byID := overlayIndex(c.model.Elements())
	var gone []*Item
	for id, it := range c.active.All() {
		if el, ok := byID[id]; !ok || el.IsDeleted {
			gone = append(gone, it)
		}
	}
	for id, it := range c.pending {
		if el, ok := byID[id]; !ok || el.IsDeleted {
			gone = append(gone, it)
		}
	}
	for _, it := range gone {
		c.destroyLocked(it)
	}
}

// SetReadOnly sets read-only mode, in which no widget is interactive
// and none can be made interactive. Stored interactive flags are kept,
// and apply again when read-only mode ends.
func (c *Controller) SetReadOnly(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readOnly = on
	for _, it := range c.active.All() {
		c.applyInteractive(it)
	}
}

// ReadOnly returns whether read-only mode is on.
func (c *Controller) ReadOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readOnly
}

// applyInteractive sets the effective interactivity of the widget.
func (c *Controller) applyInteractive(it *Item) {
	it.Widget.AsWidget().SetInteractive(it.State == Active && it.Interactive && !c.readOnly)
}

// SetInteractive sets the stored interactive flag of the active item.
// It returns [ErrReadOnly] for making an item interactive in
// read-only mode.
func (c *Controller) SetInteractive(id string, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.active.AtTry(id)
	if !ok {
		return ErrNotActive
	}
	if on && c.readOnly {
		return ErrReadOnly
	}
	it.Interactive = on
	c.applyInteractive(it)
	return nil
}

// ToggleInteractive flips the interactive flag of the active item,
// returning the new value.
func (c *Controller) ToggleInteractive(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.active.AtTry(id)
	if !ok {
		return false, ErrNotActive
	}
	if c.readOnly {
		return it.Interactive, ErrReadOnly
	}
	it.Interactive = !it.Interactive
	c.applyInteractive(it)
	c.logger.Debug("overlay: interactive", "id", id, "on", it.Interactive)
	return it.Interactive, nil
}

// State returns the lifecycle state of the given id.
func (c *Controller) State(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(id)
}

func (c *Controller) stateLocked(id string) State {
	if c.active.Has(id) {
		return Active
	}
	if _, ok := c.pending[id]; ok {
		return PendingRemoval
	}
	return Inactive
}

// ActiveIDs returns the ids of the active items, in creation order.
func (c *Controller) ActiveIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.active.Keys)
}

// PendingIDs returns the ids of the pending items, sorted.
func (c *Controller) PendingIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Item returns a copy of the item for the given id.
func (c *Controller) Item(id string) (*Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.active.AtTry(id)
	if !ok {
		it, ok = c.pending[id]
	}
	if !ok {
		return nil, false
	}
	cp := *it
	return &cp, true
}

// Wait blocks until all captures started so far have finished.
func (c *Controller) Wait() {
	c.captures.Wait()
}

// Start routes pointer events from src to the widgets, replacing
// any previous routing. It is undone by [Controller.Close].
func (c *Controller) Start(src *events.Source) *Router {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.router != nil {
		c.router.Stop()
	}
	c.router = newRouter(c, src)
	return c.router
}

// Follow keeps the controller in step with a document that implements
// [document.Notifier]: selection and element changes destroy items
// whose placeholder is gone and then reconcile, and viewport and layout
// changes update positions. It returns whether the document notifies.
// The listener is removed by [Controller.Close].
func (c *Controller) Follow() bool {
	n, ok := c.model.(document.Notifier)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.unfollow == nil {
		c.unfollow = n.OnChange(c.handleChange)
	}
	return true
}

func (c *Controller) handleChange(ch document.Changes) {
	switch ch {
	case document.SelectionChanged, document.ElementsChanged:
		c.SyncWithElements()
		c.Reconcile()
	case document.ViewportChanged, document.LayoutChanged:
		c.UpdatePositions()
	}
}

// Close stops event routing, destroys every item without capturing it,
// and waits for running captures, whose results are dropped.
// The controller does nothing after it is closed.
func (c *Controller) Close() {
	c.mu.Lock()
	unfollow := c.unfollow
	c.unfollow = nil
	if !c.closed {
		c.closed = true
		if c.router != nil {
			c.router.Stop()
			c.router = nil
		}
		items := slices.Clone(c.active.Values)
		for _, it := range c.pending {
			items = append(items, it)
		}
		for _, it := range items {
			c.destroyLocked(it)
		}
	}
	c.mu.Unlock()
	if unfollow != nil {
		unfollow()
	}
	c.cancel()
	c.captures.Wait()
}
