// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
)

// Image is a widget that displays an image loaded from a URL,
// scaled to fit while keeping its aspect ratio.
type Image struct {
	WidgetBase

	// URL is the location of the image.
	URL string

	loader Loader

	loadMu sync.Mutex
	loaded bool
	image  image.Image
	err    error
}

// NewImage returns a new [Image] for the given resource, which loads
// its image with the given loader on first use.
func NewImage(d document.Descriptor, loader Loader) *Image {
	im := &Image{URL: d.URL, loader: loader}
	im.Init(d.ID, document.Image)
	return im
}

// SetImage sets the image directly, skipping loading.
func (im *Image) SetImage(img image.Image) {
	im.loadMu.Lock()
	im.image, im.err, im.loaded = img, nil, true
	im.loadMu.Unlock()
}

// Load loads the image if it has not already been loaded,
// returning it or the error from loading it. It returns
// [ErrReleased] once the widget is destroyed. A load stopped by
// ctx is not kept, so a later call tries again.
func (im *Image) Load(ctx context.Context) (image.Image, error) {
	if im.IsReleased() {
		return nil, ErrReleased
	}
	im.loadMu.Lock()
	if im.loaded {
		defer im.loadMu.Unlock()
		return im.image, im.err
	}
	im.loadMu.Unlock()

	img, err := im.load(ctx)
	im.loadMu.Lock()
	defer im.loadMu.Unlock()
	if im.IsReleased() {
		im.image = nil
		return nil, ErrReleased
	}
	if im.loaded {
		return im.image, im.err
	}
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	if err != nil {
		slog.Error("widget.Image: loading image", "id", im.ID, "url", im.URL, "err", err)
	}
	im.image, im.err, im.loaded = img, err, true
	return img, err
}

func (im *Image) load(ctx context.Context) (image.Image, error) {
	if im.loader == nil || im.URL == "" {
		return nil, nil
	}
	data, err := im.loader.Load(ctx, im.URL)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeImage(data)
	return img, err
}

func (im *Image) Render(pc *paint.Painter) {
	sz := im.LogicalSize()
	img, err := im.Load(pc.Context())
	if img == nil {
		pc.FillBox(math32.Vector2{}, sz, color.RGBA{0xf1, 0xf1, 0xf4, 0xff})
		msg := "no image"
		if err != nil {
			msg = "image unavailable"
		}
		pc.DrawText(msg, math32.Vec2(8, 8), paint.TextStyle{Size: 14, Color: color.RGBA{0x6b, 0x6b, 0x7b, 0xff}})
		return
	}
	pc.DrawImageFit(img, math32.Vector2{}, sz)
}

func (im *Image) Destroy() {
	im.Release(func() {
		im.loadMu.Lock()
		im.image = nil
		im.loadMu.Unlock()
	})
}
