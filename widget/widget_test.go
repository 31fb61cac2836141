// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/iox/imagex"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			im.SetRGBA(x, y, c)
		}
	}
	return im
}

func TestWidgetBase(t *testing.T) {
	md := NewMarkdown(document.Descriptor{ID: "m", Kind: document.Markdown, Content: "hi"})
	wb := md.AsWidget()
	assert.Equal(t, []string{"overlay-item", "overlay-markdown"}, wb.Classes())
	assert.False(t, wb.IsVisible())
	assert.False(t, wb.IsInteractive())

	wb.SetGeometry(math32.B2(10, 10, 110, 60), math32.Vec2(200, 100))
	assert.True(t, wb.IsVisible())
	assert.Equal(t, math32.Vec2(100, 50), wb.ToLocal(math32.Vec2(60, 35)))

	wb.SetInteractive(true)
	assert.True(t, wb.HasClass(ClassInteractive))
	wb.SetInteractive(false)
	assert.False(t, wb.HasClass(ClassInteractive))

	n := 0
	assert.True(t, wb.Release(func() { n++ }))
	assert.False(t, wb.Release(func() { n++ }))
	md.Destroy()
	assert.Equal(t, 1, n)
	assert.True(t, wb.IsReleased())
	assert.False(t, wb.IsVisible())
	wb.SetGeometry(math32.B2(0, 0, 1, 1), math32.Vec2(1, 1))
	assert.False(t, wb.IsVisible())
}

func TestFactory(t *testing.T) {
	reg := NewRegistry()
	built := 0
	reg.Register("chart", func(d document.Descriptor) (Widget, error) {
		built++
		return &WidgetBase{}, nil
	})
	f := NewDefaultFactory(reg)

	for _, k := range []document.Kind{document.Image, document.Markdown, document.Video, document.App} {
		w, err := f.Create(document.Descriptor{ID: "id-" + string(k), Kind: k})
		require.NoError(t, err, k)
		assert.Equal(t, k, w.AsWidget().Kind)
		assert.True(t, w.AsWidget().HasClass(KindClass(k)))
		assert.True(t, w.AsWidget().HasClass(ClassItem))
	}

	w, err := f.Create(document.Descriptor{ID: "c", Kind: document.Custom, Component: "chart"})
	require.NoError(t, err)
	assert.Equal(t, 1, built)
	assert.Equal(t, "c", w.AsWidget().ID)
	assert.Equal(t, []string{"overlay-item", "overlay-custom"}, w.AsWidget().Classes())

	_, err = f.Create(document.Descriptor{ID: "x", Kind: document.Custom, Component: "chrt"})
	var uerr *UnsupportedKindError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "chrt", uerr.Component)
	assert.Equal(t, "chart", uerr.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "chart"`)

	err = f.Supports(document.Descriptor{ID: "y", Kind: "vidoe"})
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "video", uerr.Suggestion)

	err = f.Supports(document.Descriptor{ID: "z", Kind: document.Custom, Component: "zzzzzzzz"})
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "", uerr.Suggestion)

	var nf DefaultFactory
	err = nf.Supports(document.Descriptor{Kind: document.Custom, Component: "chart"})
	assert.Error(t, err)
}

func TestRoot(t *testing.T) {
	r := NewRoot()
	a := NewMarkdown(document.Descriptor{ID: "a", Kind: document.Markdown})
	b := NewMarkdown(document.Descriptor{ID: "b", Kind: document.Markdown})
	require.NoError(t, r.Mount("a", a))
	require.NoError(t, r.Mount("b", b))
	assert.Error(t, r.Mount("a", a))
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	p := math32.Vec2(50, 50)
	_, _, ok := r.WidgetAt(p, nil)
	assert.False(t, ok, "hidden widgets are not hit")

	a.SetGeometry(math32.B2(0, 0, 100, 100), math32.Vec2(100, 100))
	b.SetGeometry(math32.B2(40, 40, 140, 140), math32.Vec2(100, 100))
	id, _, ok := r.WidgetAt(p, nil)
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	id, _, _ = r.WidgetAt(p, func(id string, w Widget) bool { return id != "b" })
	assert.Equal(t, "a", id)

	w, ok := r.Unmount("b")
	assert.True(t, ok)
	assert.Same(t, b, w)
	assert.Equal(t, 1, r.Len())
	_, ok = r.Child("b")
	assert.False(t, ok)
}

func TestRootRender(t *testing.T) {
	r := NewRoot()
	im := NewImage(document.Descriptor{ID: "i", Kind: document.Image}, nil)
	im.SetImage(solidImage(4, 4, color.RGBA{0, 200, 0, 255}))
	require.NoError(t, r.Mount("i", im))

	pc := paint.NewPainter(100, 100)
	r.Render(pc)
	assert.Equal(t, color.RGBA{}, imagex.ColorAt(pc.Image, 20, 20), "hidden until positioned")

	im.SetGeometry(math32.B2(10, 10, 50, 50), math32.Vec2(20, 20))
	im.SetInteractive(true)
	r.Render(pc)
	assert.True(t, imagex.CompareColors(color.RGBA{0, 200, 0, 255}, imagex.ColorAt(pc.Image, 30, 30), 2))
	assert.Equal(t, InteractiveColor, imagex.ColorAt(pc.Image, 10, 30))
	assert.Equal(t, color.RGBA{}, imagex.ColorAt(pc.Image, 60, 60))
}

func TestImageLoad(t *testing.T) {
	uri, err := imagex.ToDataURI(solidImage(3, 2, color.RGBA{255, 0, 0, 255}), imagex.PNG)
	require.NoError(t, err)
	im := NewImage(document.Descriptor{ID: "i", Kind: document.Image, URL: uri}, FileLoader{})
	img, err := im.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	fn := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, imagex.Save(solidImage(5, 5, color.RGBA{0, 0, 255, 255}), fn))
	im = NewImage(document.Descriptor{ID: "j", Kind: document.Image, URL: "file://" + fn}, FileLoader{})
	img, err = im.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())

	txt := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(txt, []byte("not an image"), 0o644))
	im = NewImage(document.Descriptor{ID: "k", Kind: document.Image, URL: txt}, FileLoader{})
	_, err = im.Load(context.Background())
	assert.Error(t, err)

	_, err = FileLoader{}.Load(context.Background(), "https://example.com/a.png")
	assert.Error(t, err)
}

func TestFileLoaderMaxSize(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, imagex.Save(solidImage(16, 16, color.RGBA{0, 0, 255, 255}), fn))
	st, err := os.Stat(fn)
	require.NoError(t, err)

	data, err := FileLoader{MaxSize: st.Size()}.Load(context.Background(), fn)
	require.NoError(t, err)
	assert.Len(t, data, int(st.Size()))

	_, err = FileLoader{MaxSize: st.Size() - 1}.Load(context.Background(), fn)
	assert.ErrorIs(t, err, ErrTooLarge)

	im := NewImage(document.Descriptor{ID: "big", Kind: document.Image, URL: fn}, FileLoader{MaxSize: 10})
	img, err := im.Load(context.Background())
	assert.Nil(t, img)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestImageLoadCancelled(t *testing.T) {
	uri, err := imagex.ToDataURI(solidImage(4, 4, color.RGBA{255, 0, 0, 255}), imagex.PNG)
	require.NoError(t, err)
	loads := 0
	loader := LoaderFunc(func(ctx context.Context, u string) ([]byte, error) {
		loads++
		return FileLoader{}.Load(ctx, u)
	})
	im := NewImage(document.Descriptor{ID: "i", Kind: document.Image, URL: uri}, loader)
	im.SetGeometry(math32.B2(0, 0, 40, 40), math32.Vec2(40, 40))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pc := paint.NewPainter(40, 40).WithContext(ctx)
	im.Render(pc)
	assert.Equal(t, 1, loads)
	assert.NotEqual(t, color.RGBA{255, 0, 0, 255}, imagex.ColorAt(pc.Image, 20, 20), "cancelled load draws the placeholder")

	img, err := im.Load(context.Background())
	require.NoError(t, err, "a cancelled load is tried again")
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, loads)
}

func TestReleasedResources(t *testing.T) {
	opened := 0
	v := NewVideo(document.Descriptor{ID: "v", Kind: document.Video, URL: "movie.mp4"}, func(url string) (FrameSource, error) {
		opened++
		return &fakeFrames{n: 3}, nil
	})
	v.SetGeometry(math32.B2(0, 0, 20, 20), math32.Vec2(20, 20))
	v.Destroy()
	v.Render(paint.NewPainter(20, 20))
	v.Play()
	assert.ErrorIs(t, v.Seek(0.5), ErrReleased)
	assert.Equal(t, 0, opened, "a destroyed video never opens its source")
	assert.False(t, v.IsPlaying())

	uri, err := imagex.ToDataURI(solidImage(2, 2, color.RGBA{255, 0, 0, 255}), imagex.PNG)
	require.NoError(t, err)
	im := NewImage(document.Descriptor{ID: "i", Kind: document.Image, URL: uri}, FileLoader{})
	im.Destroy()
	img, err := im.Load(context.Background())
	assert.Nil(t, img)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestMarkdown(t *testing.T) {
	src := "# Title\n\nSome *text* with <b>html</b>.\n\n- one\n- two\n\n```go\nfunc main() {}\n```\n"
	md := NewMarkdown(document.Descriptor{ID: "m", Kind: document.Markdown, Content: src})
	assert.Equal(t, "Title\nSome text with html.\none\ntwo\nfunc main() {}", md.Text())

	blocks := md.parse()
	require.Len(t, blocks, 5)
	assert.Equal(t, mdHeading, blocks[0].kind)
	assert.Equal(t, 1, blocks[0].level)
	assert.Equal(t, mdListItem, blocks[2].kind)
	assert.Equal(t, mdCode, blocks[4].kind)
	assert.Greater(t, len(blocks[4].code[0]), 1, "code is highlighted into several spans")

	md.SetGeometry(math32.B2(0, 0, 200, 200), math32.Vec2(200, 200))
	pc := paint.NewPainter(200, 200)
	md.Render(pc)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, imagex.ColorAt(pc.Image, 199, 199))

	ev := events.NewScroll(math32.Vec2(5, 5), math32.Vec2(0, 30), 0)
	md.HandleEvent(ev)
	assert.True(t, ev.IsHandled())
	assert.Equal(t, float32(30), md.Scroll())
	md.HandleEvent(events.NewScroll(math32.Vec2(5, 5), math32.Vec2(0, -100), 0))
	assert.Equal(t, float32(0), md.Scroll())
}

type fakeFrames struct {
	n, i   int
	closed int
}

func (f *fakeFrames) NextFrame() (image.Image, time.Duration, error) {
	if f.i >= f.n {
		return nil, 0, io.EOF
	}
	f.i++
	return solidImage(2, 2, color.RGBA{uint8(f.i), 0, 0, 255}), time.Duration(f.i-1) * time.Second, nil
}

func (f *fakeFrames) Seek(t time.Duration) error {
	f.i = int(t / time.Second)
	return nil
}

func (f *fakeFrames) Duration() time.Duration { return time.Duration(f.n) * time.Second }

func (f *fakeFrames) Close() error {
	f.closed++
	return nil
}

func TestVideo(t *testing.T) {
	src := &fakeFrames{n: 3}
	opened := 0
	v := NewVideo(document.Descriptor{ID: "v", Kind: document.Video, URL: "movie.mp4"}, func(url string) (FrameSource, error) {
		opened++
		assert.Equal(t, "movie.mp4", url)
		return src, nil
	})
	assert.True(t, v.Controls)
	assert.Equal(t, 0, opened)

	v.Play()
	assert.Equal(t, 1, opened)
	assert.True(t, v.IsPlaying())
	assert.True(t, v.Advance())
	assert.Equal(t, time.Second, v.Position())
	assert.True(t, v.Advance())
	assert.False(t, v.Advance(), "pauses at the end")
	assert.False(t, v.IsPlaying())

	require.NoError(t, v.Seek(0.5))
	assert.Equal(t, time.Second, v.Position())

	v.SetGeometry(math32.B2(0, 0, 200, 100), math32.Vec2(200, 100))
	click := events.NewMouse(events.Click, events.Left, math32.Vec2(10, 90), 0)
	v.HandleEvent(click)
	assert.True(t, click.IsHandled())
	assert.True(t, v.IsPlaying())
	v.HandleEvent(events.NewMouse(events.Click, events.Left, math32.Vec2(10, 90), 0))
	assert.False(t, v.IsPlaying())

	above := events.NewMouse(events.Click, events.Left, math32.Vec2(10, 10), 0)
	v.HandleEvent(above)
	assert.False(t, above.IsHandled())

	pc := paint.NewPainter(200, 100)
	v.Render(pc)

	v.Destroy()
	v.Destroy()
	assert.Equal(t, 1, src.closed)
	assert.Equal(t, 1, opened)
}

type fakeSurface struct {
	events int
	closed int
}

func (s *fakeSurface) Render(pc *paint.Painter, size math32.Vector2) {
	pc.FillBox(math32.Vector2{}, size, color.RGBA{1, 2, 3, 255})
}
func (s *fakeSurface) HandleEvent(ev events.Event) { s.events++ }
func (s *fakeSurface) Close() error {
	s.closed++
	return nil
}

func TestApp(t *testing.T) {
	surf := &fakeSurface{}
	var gotAllow, gotSandbox string
	a := NewApp(document.Descriptor{ID: "a", Kind: document.App, URL: "https://apps.example.com/x"}, func(url, sandbox, allow string) (AppSurface, error) {
		gotSandbox, gotAllow = sandbox, allow
		return surf, nil
	})
	assert.Equal(t, "apps.example.com", a.Host())

	a.SetGeometry(math32.B2(0, 0, 10, 10), math32.Vec2(10, 10))
	pc := paint.NewPainter(10, 10)
	a.Render(pc)
	assert.Equal(t, "clipboard-read; clipboard-write", gotAllow)
	assert.Contains(t, gotSandbox, "allow-scripts")
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, imagex.ColorAt(pc.Image, 5, 5))

	ev := events.NewMouse(events.MouseDown, events.Left, math32.Vec2(1, 1), 0)
	a.HandleEvent(ev)
	assert.True(t, ev.IsHandled())
	assert.Equal(t, 1, surf.events)

	a.Destroy()
	a.Destroy()
	assert.Equal(t, 1, surf.closed)
	assert.Nil(t, a.Surface())

	plain := NewApp(document.Descriptor{ID: "p", Kind: document.App, URL: "https://x.org"}, nil)
	plain.SetGeometry(math32.B2(0, 0, 100, 60), math32.Vec2(100, 60))
	plain.Render(paint.NewPainter(100, 60))
	ev = events.NewMouse(events.MouseDown, events.Left, math32.Vec2(1, 1), 0)
	plain.HandleEvent(ev)
	assert.False(t, ev.IsHandled())
}
