// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/inkframe/inkframe/base/config"
	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/iox/imagex"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
	"github.com/inkframe/inkframe/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{255, 0, 0, 255}

// box is a custom widget that fills itself and records events.
type box struct {
	widget.WidgetBase
	mu     sync.Mutex
	events []events.Event
}

func newBox(d document.Descriptor) (widget.Widget, error) {
	b := &box{}
	b.Init(d.ID, d.Kind)
	return b, nil
}

func (b *box) Render(pc *paint.Painter) {
	pc.FillBox(math32.Vector2{}, b.LogicalSize(), red)
}

func (b *box) HandleEvent(ev events.Event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

func (b *box) received() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

// countingFactory counts the widgets it creates and destroys.
type countingFactory struct {
	*widget.DefaultFactory
	mu        sync.Mutex
	created   int
	destroyed int
}

func (f *countingFactory) Create(d document.Descriptor) (widget.Widget, error) {
	w, err := f.DefaultFactory.Create(d)
	if err == nil {
		f.mu.Lock()
		f.created++
		f.mu.Unlock()
	}
	return w, err
}

func (f *countingFactory) Destroy(w widget.Widget) {
	f.mu.Lock()
	f.destroyed++
	f.mu.Unlock()
	f.DefaultFactory.Destroy(w)
}

func (f *countingFactory) counts() (created, destroyed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.destroyed
}

// fakeRasterizer returns a data URI naming the widget. If hold is
// set, captures block until it is closed.
type fakeRasterizer struct {
	mu    sync.Mutex
	calls int
	hold  chan struct{}
	err   error
}

func (r *fakeRasterizer) Capture(ctx context.Context, w widget.Widget, logicalW, logicalH float32) (string, error) {
	r.mu.Lock()
	r.calls++
	hold, err := r.hold, r.err
	r.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + w.AsWidget().ID, nil
}

func (r *fakeRasterizer) numCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fixture struct {
	c     *Controller
	doc   *document.Memory
	f     *countingFactory
	r     *fakeRasterizer
	snaps []string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	fx := &fixture{doc: document.NewMemory(), r: &fakeRasterizer{}}
	fx.doc.SetLayout(math32.B2(0, 0, 800, 600), math32.B2(10, 20, 810, 620))
	reg := widget.NewRegistry()
	reg.Register("box", newBox)
	fx.f = &countingFactory{DefaultFactory: widget.NewDefaultFactory(reg)}
	base := []Option{
		WithFactory(fx.f),
		WithRasterizer(fx.r),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSnapshotHandler(func(id, uri string) { fx.snaps = append(fx.snaps, id) }),
	}
	fx.c = New(fx.doc, append(base, opts...)...)
	t.Cleanup(fx.c.Close)
	return fx
}

func boxDesc(id string) document.Descriptor {
	return document.Descriptor{ID: id, Kind: document.Custom, Component: "box",
		X: document.Ptr[float32](30), Y: document.Ptr[float32](40),
		Width: document.Ptr[float32](200), Height: document.Ptr[float32](100)}
}

// add creates placeholders for the descriptors and adds them to the document.
func (fx *fixture) add(descs ...document.Descriptor) {
	fx.doc.AddElements(fx.c.BatchCreate(descs)...)
}

func (fx *fixture) selectOnly(ids ...string) {
	fx.doc.SetSelection(ids...)
	fx.c.Reconcile()
}

func (fx *fixture) snapshot(t *testing.T, id string) string {
	el, ok := fx.doc.Element(id)
	require.True(t, ok)
	md, ok := el.Overlay()
	require.True(t, ok)
	return md.Snapshot
}

func (fx *fixture) widget(t *testing.T, id string) *box {
	w, ok := fx.c.Root().Child(id)
	require.True(t, ok)
	return w.(*box)
}

func TestMapToViewport(t *testing.T) {
	scene := math32.B2FromSize(math32.Vec2(30, 40), math32.Vec2(200, 100))
	vp := document.Viewport{Zoom: 2, ScrollX: -10, ScrollY: 5}
	off := math32.Vec2(10, 20)
	got := MapToViewport(scene, vp, off)
	assert.Equal(t, math32.B2(50, 110, 450, 310), got)
	assert.Equal(t, got, MapToViewport(scene, vp, off))

	got = MapToViewport(scene, document.Viewport{}, math32.Vector2{})
	assert.Equal(t, scene, got)
}

func TestLayoutOffset(t *testing.T) {
	doc := document.NewMemory()
	off, err := LayoutOffset(doc)
	var lerr *MissingLayoutError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "container", lerr.What)
	assert.Equal(t, math32.Vector2{}, off)

	doc.SetLayout(math32.B2(5, 5, 100, 100), math32.B2(8, 9, 100, 100))
	off, err = LayoutOffset(doc)
	require.NoError(t, err)
	assert.Equal(t, math32.Vec2(3, 4), off)
}

func TestBatchCreate(t *testing.T) {
	fx := newFixture(t)
	plain := document.Descriptor{ID: "m1", Kind: document.Markdown, Content: "# hi"}
	els := fx.c.BatchCreate([]document.Descriptor{
		boxDesc("r1"),
		boxDesc("r1"),
		{Kind: document.Image, URL: "a.png"},
		{ID: "x1", Kind: "chrat"},
		{ID: "x2", Kind: document.Custom, Component: "bx"},
		plain,
	})
	require.Len(t, els, 2)
	r1 := els[0]
	assert.Equal(t, "r1", r1.ID)
	assert.Equal(t, []float32{30, 40, 200, 100}, []float32{r1.X, r1.Y, r1.Width, r1.Height})
	md, ok := r1.Overlay()
	require.True(t, ok)
	assert.Equal(t, "box", md.Component)

	m1 := els[1]
	assert.Equal(t, []float32{0, 0, 320, 320}, []float32{m1.X, m1.Y, m1.Width, m1.Height})

	created, _ := fx.f.counts()
	assert.Zero(t, created)
	assert.Zero(t, fx.c.Root().Len())
}

func TestSelectMountsWidget(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"))
	assert.Equal(t, Inactive, fx.c.State("r1"))

	fx.selectOnly("r1")
	assert.Equal(t, Active, fx.c.State("r1"))
	b := fx.widget(t, "r1")
	assert.Equal(t, math32.B2(40, 60, 240, 160), b.Box())
	assert.Equal(t, math32.Vec2(200, 100), b.LogicalSize())
	assert.True(t, b.IsVisible())
	assert.True(t, b.HasClass(widget.ClassSelected))
	assert.False(t, b.IsInteractive())

	// reconciling again changes nothing
	fx.c.Reconcile()
	created, _ := fx.f.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"r1"}, fx.c.ActiveIDs())
}

func TestFollowViewport(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")

	fx.doc.SetViewport(document.Viewport{Zoom: 2, ScrollX: -30, ScrollY: 10})
	fx.c.UpdatePositions()
	b := fx.widget(t, "r1")
	assert.Equal(t, math32.B2(10, 120, 410, 320), b.Box())
	assert.Equal(t, math32.Vec2(200, 100), b.LogicalSize())

	require.NoError(t, fx.doc.UpdateElement("r1", func(el *document.Element) { el.X = 60 }))
	fx.c.UpdatePositions()
	assert.Equal(t, float32(70), b.Box().Min.X)

	fx.doc.ClearLayout()
	fx.c.UpdatePositions()
	assert.Equal(t, float32(60), b.Box().Min.X)
}

func TestRoundTrip(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"))
	before, _ := fx.doc.Element("r1")

	fx.selectOnly("r1")
	fx.selectOnly()
	assert.NotEqual(t, Active, fx.c.State("r1"))
	fx.c.Wait()

	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Equal(t, "data:image/png;base64,r1", fx.snapshot(t, "r1"))
	after, _ := fx.doc.Element("r1")
	assert.Greater(t, after.Version, before.Version)
	assert.Equal(t, []string{"r1"}, fx.snaps)
	assert.Equal(t, 1, fx.r.numCalls())
	created, destroyed := fx.f.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, destroyed)
	assert.Zero(t, fx.c.Root().Len())
}

func TestPendingKeepsPosition(t *testing.T) {
	fx := newFixture(t)
	fx.r.hold = make(chan struct{})
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	require.NoError(t, fx.c.SetInteractive("r1", true))

	fx.selectOnly()
	assert.Equal(t, PendingRemoval, fx.c.State("r1"))
	assert.Equal(t, []string{"r1"}, fx.c.PendingIDs())
	b := fx.widget(t, "r1")
	assert.False(t, b.IsInteractive())
	assert.False(t, b.HasClass(widget.ClassSelected))

	fx.doc.SetViewport(document.Viewport{Zoom: 3})
	fx.c.UpdatePositions()
	assert.Equal(t, math32.B2(40, 60, 240, 160), b.Box())
	_, err := fx.c.ToggleInteractive("r1")
	assert.ErrorIs(t, err, ErrNotActive)

	close(fx.r.hold)
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r1"))
}

func TestResurrection(t *testing.T) {
	fx := newFixture(t)
	fx.r.hold = make(chan struct{})
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	require.NoError(t, fx.c.SetInteractive("r1", true))
	b := fx.widget(t, "r1")

	fx.selectOnly()
	require.Equal(t, PendingRemoval, fx.c.State("r1"))
	it, _ := fx.c.Item("r1")
	gen := it.Generation()

	fx.selectOnly("r1")
	require.Equal(t, Active, fx.c.State("r1"))
	it, _ = fx.c.Item("r1")
	assert.Greater(t, it.Generation(), gen)
	assert.Same(t, b, fx.widget(t, "r1"))
	assert.True(t, b.IsInteractive())
	assert.True(t, b.HasClass(widget.ClassSelected))

	close(fx.r.hold)
	fx.c.Wait()
	assert.Equal(t, Active, fx.c.State("r1"))
	assert.Empty(t, fx.snapshot(t, "r1"))
	assert.Empty(t, fx.snaps)
	created, destroyed := fx.f.counts()
	assert.Equal(t, 1, created)
	assert.Zero(t, destroyed)
}

func TestDeleteWhilePending(t *testing.T) {
	fx := newFixture(t)
	fx.r.hold = make(chan struct{})
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	fx.selectOnly()
	require.Equal(t, PendingRemoval, fx.c.State("r1"))

	require.NoError(t, fx.doc.MarkDeleted("r1"))
	fx.c.SyncWithElements()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	_, destroyed := fx.f.counts()
	assert.Equal(t, 1, destroyed)

	close(fx.r.hold)
	fx.c.Wait()
	assert.Empty(t, fx.snapshot(t, "r1"))
	_, destroyed = fx.f.counts()
	assert.Equal(t, 1, destroyed)
}

// countingSource is a video source that counts closes.
type countingSource struct {
	mu     *sync.Mutex
	closed *int
}

func (s countingSource) NextFrame() (image.Image, time.Duration, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), 0, nil
}
func (s countingSource) Seek(t time.Duration) error { return nil }
func (s countingSource) Duration() time.Duration    { return time.Second }
func (s countingSource) Close() error {
	s.mu.Lock()
	*s.closed++
	s.mu.Unlock()
	return nil
}

func TestDeleteDuringSettle(t *testing.T) {
	s := DefaultSettings()
	s.SettleDelay = config.Duration(time.Second)
	fx := newFixture(t, WithRasterizer(nil), WithSettings(s))
	var mu sync.Mutex
	opened, closed := 0, 0
	fx.f.VideoOpener = func(url string) (widget.FrameSource, error) {
		mu.Lock()
		opened++
		mu.Unlock()
		return countingSource{mu: &mu, closed: &closed}, nil
	}
	fx.add(document.Descriptor{ID: "v1", Kind: document.Video, URL: "movie.mp4",
		Width: document.Ptr[float32](200), Height: document.Ptr[float32](100)})
	fx.selectOnly("v1")
	fx.selectOnly()
	require.Equal(t, PendingRemoval, fx.c.State("v1"))

	require.NoError(t, fx.doc.MarkDeleted("v1"))
	fx.c.SyncWithElements()
	start := time.Now()
	fx.c.Wait()
	assert.Less(t, time.Since(start), s.SettleDelay.D(), "destroying the item stops its capture")

	mu.Lock()
	assert.Equal(t, opened, closed, "every opened source is closed")
	assert.Zero(t, opened, "the source is never opened after destroy")
	mu.Unlock()
	assert.Empty(t, fx.snapshot(t, "v1"))
	assert.Empty(t, fx.snaps)
}

func TestResurrectStopsCapture(t *testing.T) {
	fx := newFixture(t)
	fx.r.hold = make(chan struct{})
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	fx.selectOnly()
	fx.selectOnly("r1")
	fx.c.Wait()
	assert.Equal(t, Active, fx.c.State("r1"))
	assert.Equal(t, 1, fx.r.numCalls())
	assert.Empty(t, fx.snapshot(t, "r1"))

	// the second removal is the one that is written back
	fx.selectOnly()
	close(fx.r.hold)
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Equal(t, 2, fx.r.numCalls())
	assert.Equal(t, []string{"r1"}, fx.snaps)
	assert.Equal(t, "data:image/png;base64,r1", fx.snapshot(t, "r1"))
}

func TestSnapshotElementID(t *testing.T) {
	fx := newFixture(t)
	el := document.NewPlaceholder(boxDesc("r1"), 100)
	el.ID = "e1"
	fx.doc.AddElements(el)

	fx.selectOnly("e1")
	require.Equal(t, Active, fx.c.State("r1"))
	it, ok := fx.c.Item("r1")
	require.True(t, ok)
	assert.Equal(t, "e1", it.ElementID)

	fx.selectOnly()
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Equal(t, "data:image/png;base64,r1", fx.snapshot(t, "e1"))
	assert.Equal(t, []string{"r1"}, fx.snaps)
}

func TestFollow(t *testing.T) {
	fx := newFixture(t)
	require.True(t, fx.c.Follow())
	require.True(t, fx.c.Follow())
	fx.add(boxDesc("r1"), boxDesc("r2"))

	fx.doc.SetSelection("r1")
	assert.Equal(t, Active, fx.c.State("r1"))
	b := fx.widget(t, "r1")
	assert.Equal(t, math32.B2(40, 60, 240, 160), b.Box())

	fx.doc.SetViewport(document.Viewport{Zoom: 2})
	assert.Equal(t, math32.B2(70, 100, 470, 300), b.Box())

	fx.doc.SetSelection("r2")
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Equal(t, Active, fx.c.State("r2"))
	assert.Equal(t, "data:image/png;base64,r1", fx.snapshot(t, "r1"))

	require.NoError(t, fx.doc.MarkDeleted("r2"))
	assert.Equal(t, Inactive, fx.c.State("r2"))
	assert.Zero(t, fx.c.Root().Len())

	fx.c.Close()
	assert.False(t, fx.c.Follow())
	fx.doc.SetSelection("r1")
	assert.Equal(t, Inactive, fx.c.State("r1"))

	other := New(struct{ document.Model }{fx.doc})
	defer other.Close()
	assert.False(t, other.Follow(), "the document does not notify")
}

func TestDeleteWhileActive(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"), boxDesc("r2"))
	fx.selectOnly("r1", "r2")
	require.Equal(t, []string{"r1", "r2"}, fx.c.ActiveIDs())

	require.True(t, fx.doc.RemoveElement("r1"))
	fx.c.SyncWithElements()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Equal(t, Active, fx.c.State("r2"))

	require.NoError(t, fx.doc.MarkDeleted("r2"))
	fx.c.UpdatePositions()
	assert.NotEqual(t, Active, fx.c.State("r2"))
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r2"))
	assert.Zero(t, fx.c.Root().Len())
}

func TestReadOnly(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	b := fx.widget(t, "r1")

	on, err := fx.c.ToggleInteractive("r1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, b.IsInteractive())
	assert.True(t, b.HasClass(widget.ClassInteractive))

	fx.c.SetReadOnly(true)
	assert.True(t, fx.c.ReadOnly())
	assert.False(t, b.IsInteractive())
	it, _ := fx.c.Item("r1")
	assert.True(t, it.Interactive)
	assert.ErrorIs(t, fx.c.SetInteractive("r1", true), ErrReadOnly)
	_, err = fx.c.ToggleInteractive("r1")
	assert.ErrorIs(t, err, ErrReadOnly)

	fx.c.SetReadOnly(false)
	assert.True(t, b.IsInteractive())
	require.NoError(t, fx.c.SetInteractive("r1", false))
	assert.False(t, b.IsInteractive())

	assert.ErrorIs(t, fx.c.SetInteractive("nope", true), ErrNotActive)
}

func TestUnsupportedPlaceholder(t *testing.T) {
	fx := newFixture(t)
	el := document.NewPlaceholder(document.Descriptor{ID: "u1", Kind: document.Custom, Component: "gone"}, 100)
	fx.doc.AddElements(el)
	fx.selectOnly("u1")
	assert.Equal(t, Inactive, fx.c.State("u1"))
	assert.Zero(t, fx.c.Root().Len())
}

func TestCaptureFailure(t *testing.T) {
	fx := newFixture(t)
	fx.r.err = errors.New("boom")
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	fx.selectOnly()
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Empty(t, fx.snapshot(t, "r1"))
	_, destroyed := fx.f.counts()
	assert.Equal(t, 1, destroyed)
}

func TestCaptureTimeout(t *testing.T) {
	s := DefaultSettings()
	s.CaptureTimeout = config.Duration(20 * time.Millisecond)
	fx := newFixture(t, WithSettings(s))
	fx.r.hold = make(chan struct{})
	defer close(fx.r.hold)
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	fx.selectOnly()
	fx.c.Wait()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Empty(t, fx.snapshot(t, "r1"))
}

func TestClose(t *testing.T) {
	fx := newFixture(t)
	fx.r.hold = make(chan struct{})
	fx.add(boxDesc("r1"), boxDesc("r2"))
	fx.selectOnly("r1", "r2")
	fx.selectOnly("r2")
	require.Equal(t, PendingRemoval, fx.c.State("r1"))

	fx.c.Close()
	assert.Equal(t, Inactive, fx.c.State("r1"))
	assert.Equal(t, Inactive, fx.c.State("r2"))
	_, destroyed := fx.f.counts()
	assert.Equal(t, 2, destroyed)
	assert.Empty(t, fx.snapshot(t, "r1"))

	fx.selectOnly("r1")
	assert.Equal(t, Inactive, fx.c.State("r1"))
}

func TestRouter(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	b := fx.widget(t, "r1")

	src := events.NewSource()
	docEvents := 0
	src.On(events.Bubble, func(ev events.Event) { docEvents++ },
		events.DoubleClick, events.MouseDown, events.MouseUp)
	r := fx.c.Start(src)

	inside := math32.Vec2(140, 110)
	outside := math32.Vec2(5, 5)

	// not interactive yet: pointer events pass through
	assert.False(t, src.Dispatch(events.NewMouse(events.MouseDown, events.Left, inside, 0)))
	assert.Equal(t, 1, docEvents)
	assert.Empty(t, b.received())

	assert.True(t, src.Dispatch(events.NewDoubleClick(inside)))
	assert.True(t, b.IsInteractive())
	assert.Equal(t, 1, docEvents)

	assert.True(t, src.Dispatch(events.NewMouse(events.MouseDown, events.Left, inside, 0)))
	assert.Equal(t, 1, docEvents)
	got := b.received()
	require.Len(t, got, 1)
	assert.Equal(t, math32.Vec2(100, 50), got[0].Pos())
	assert.False(t, got[0].IsHandled())

	assert.False(t, src.Dispatch(events.NewMouse(events.MouseUp, events.Left, outside, 0)))
	assert.Equal(t, 2, docEvents)
	assert.False(t, src.Dispatch(events.NewDoubleClick(outside)))
	assert.Equal(t, 3, docEvents)

	fx.c.SetReadOnly(true)
	assert.False(t, src.Dispatch(events.NewDoubleClick(inside)))
	assert.False(t, src.Dispatch(events.NewMouse(events.MouseDown, events.Left, inside, 0)))
	assert.Equal(t, 5, docEvents)
	fx.c.SetReadOnly(false)

	assert.True(t, src.Dispatch(events.NewDoubleClick(inside)))
	assert.False(t, b.IsInteractive())

	r.Stop()
	r.Stop()
	assert.Zero(t, src.NumListeners(events.Capture, events.DoubleClick))
}

func TestRouterZoomed(t *testing.T) {
	fx := newFixture(t)
	fx.add(boxDesc("r1"))
	fx.doc.SetViewport(document.Viewport{Zoom: 2})
	fx.selectOnly("r1")
	require.NoError(t, fx.c.SetInteractive("r1", true))
	b := fx.widget(t, "r1")

	src := events.NewSource()
	fx.c.Start(src)
	// box is at (70, 100) with size (400, 200)
	require.True(t, src.Dispatch(events.NewScroll(math32.Vec2(170, 150), math32.Vec2(0, 3), 0)))
	got := b.received()
	require.Len(t, got, 1)
	assert.Equal(t, math32.Vec2(50, 25), got[0].Pos())
}

func TestPaintRasterizer(t *testing.T) {
	s := DefaultSettings()
	s.SettleDelay = 0
	s.CaptureScale = 2
	pr := NewPaintRasterizer(s)
	b, _ := newBox(boxDesc("r1"))
	b.AsWidget().SetGeometry(math32.B2(0, 0, 20, 10), math32.Vec2(20, 10))

	uri, err := pr.Capture(context.Background(), b, 20, 10)
	require.NoError(t, err)
	img, f, err := imagex.FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, imagex.PNG, f)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	assert.Equal(t, red, imagex.ColorAt(img, 20, 10))
	assert.Equal(t, math32.B2(0, 0, 20, 10), b.AsWidget().Box())

	s.MaxCaptureDim = 10
	s.CaptureFormat = "jpeg"
	pr.ApplySettings(s)
	uri, err = pr.Capture(context.Background(), b, 20, 10)
	require.NoError(t, err)
	img, f, err = imagex.FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, imagex.JPEG, f)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())

	_, err = pr.Capture(context.Background(), b, 0, 10)
	assert.Error(t, err)

	s.SettleDelay = config.Duration(time.Second)
	pr.ApplySettings(s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pr.Capture(ctx, b, 20, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

// ctxBox records the context it is rendered with.
type ctxBox struct {
	widget.WidgetBase
	ctx context.Context
}

func (b *ctxBox) Render(pc *paint.Painter) {
	b.ctx = pc.Context()
}

func TestCaptureContext(t *testing.T) {
	s := DefaultSettings()
	s.SettleDelay = 0
	pr := NewPaintRasterizer(s)
	b := &ctxBox{}
	b.Init("c1", document.Custom)
	b.SetGeometry(math32.B2(0, 0, 10, 10), math32.Vec2(10, 10))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err := pr.Capture(ctx, b, 10, 10)
	require.NoError(t, err)
	require.NotNil(t, b.ctx)
	_, ok := b.ctx.Deadline()
	assert.True(t, ok, "widgets render with the capture context")
}

func TestControllerPaintCapture(t *testing.T) {
	s := DefaultSettings()
	s.SettleDelay = config.Duration(time.Millisecond)
	fx := newFixture(t, WithRasterizer(nil), WithSettings(s))
	fx.add(boxDesc("r1"))
	fx.selectOnly("r1")
	fx.selectOnly()
	fx.c.Wait()
	img, _, err := imagex.FromDataURI(fx.snapshot(t, "r1"))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 50*time.Millisecond, s.SettleDelay.D())
	assert.Equal(t, 5*time.Second, s.CaptureTimeout.D())
	assert.Equal(t, float32(320), s.DefaultSize)
	require.NoError(t, s.Validate())

	bad := s
	bad.CaptureFormat = "gif"
	assert.Error(t, bad.Validate())
	bad = s
	bad.CaptureScale = 0
	assert.Error(t, bad.Validate())

	fn := filepath.Join(t.TempDir(), "overlay.toml")
	require.NoError(t, os.WriteFile(fn, []byte("capture_format = \"webp\"\nsettle_delay = \"10ms\"\n"), 0o644))
	got, err := OpenSettings(fn)
	require.NoError(t, err)
	assert.Equal(t, "webp", got.CaptureFormat)
	assert.Equal(t, 10*time.Millisecond, got.SettleDelay.D())
	assert.Equal(t, 5*time.Second, got.CaptureTimeout.D())

	fx := newFixture(t)
	assert.Error(t, fx.c.SetSettings(bad))
	require.NoError(t, fx.c.SetSettings(got))
	assert.Equal(t, "webp", fx.c.Settings().CaptureFormat)
}

func TestImageScenario(t *testing.T) {
	fx := newFixture(t)
	fx.doc.SetLayout(math32.B2(0, 0, 800, 600), math32.B2(0, 0, 800, 600))
	els := fx.c.BatchCreate([]document.Descriptor{{ID: "r1", Kind: document.Image, URL: "a.png",
		X: document.Ptr[float32](10), Y: document.Ptr[float32](20),
		Width: document.Ptr[float32](100), Height: document.Ptr[float32](50)}})
	require.Len(t, els, 1)
	el := els[0]
	assert.Equal(t, []float32{10, 20, 100, 50}, []float32{el.X, el.Y, el.Width, el.Height})
	md, ok := el.Overlay()
	require.True(t, ok)
	assert.Equal(t, "r1", md.ID)
	assert.Equal(t, document.Image, md.Kind)

	fx.doc.AddElements(els...)
	fx.doc.SetViewport(document.Viewport{Zoom: 2, ScrollX: 5})
	fx.selectOnly("r1")
	w, ok := fx.c.Root().Child("r1")
	require.True(t, ok)
	assert.Equal(t, math32.B2(30, 40, 230, 140), w.AsWidget().Box())
}
