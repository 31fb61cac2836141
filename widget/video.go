// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
)

// FrameSource is a decoded video stream.
type FrameSource interface {

	// NextFrame returns the next frame and its presentation time,
	// or [io.EOF] at the end of the stream.
	NextFrame() (image.Image, time.Duration, error)

	// Seek moves the stream to the given time.
	Seek(t time.Duration) error

	// Duration returns the total length of the stream.
	Duration() time.Duration

	// Close releases the stream.
	Close() error
}

// VideoOpener opens the video at the given URL.
type VideoOpener func(url string) (FrameSource, error)

// ControlsHeight is the logical height of the video transport controls.
const ControlsHeight = 32

// Video is a widget that plays a video from a URL, with transport
// controls for play, pause and seek. The stream is opened on first
// use; frames are advanced by calling [Video.Advance] on each tick
// while playing.
type Video struct {
	WidgetBase

	// URL is the location of the video.
	URL string

	// Controls is whether the transport controls are shown.
	Controls bool

	opener VideoOpener

	vmu     sync.Mutex
	opened  bool
	source  FrameSource
	err     error
	frame   image.Image
	pos     time.Duration
	playing bool
}

// NewVideo returns a new [Video] for the given resource, with controls.
func NewVideo(d document.Descriptor, opener VideoOpener) *Video {
	v := &Video{URL: d.URL, Controls: true, opener: opener}
	v.Init(d.ID, document.Video)
	return v
}

// open opens the source if not already done, and never once the
// widget is released. Must be called with vmu held.
func (v *Video) open() FrameSource {
	if v.opened || v.IsReleased() {
		return v.source
	}
	v.opened = true
	if v.opener == nil || v.URL == "" {
		return nil
	}
	v.source, v.err = v.opener(v.URL)
	if v.err != nil {
		slog.Error("widget.Video: opening video", "id", v.ID, "url", v.URL, "err", v.err)
		return nil
	}
	v.readFrame()
	return v.source
}

// readFrame reads the next frame into v.frame, pausing at the end.
// Must be called with vmu held and an open source.
func (v *Video) readFrame() {
	img, t, err := v.source.NextFrame()
	if errors.Is(err, io.EOF) {
		v.playing = false
		return
	}
	if err != nil {
		slog.Error("widget.Video: decoding frame", "id", v.ID, "err", err)
		v.playing = false
		return
	}
	v.frame, v.pos = img, t
}

// Play starts playback.
func (v *Video) Play() {
	v.vmu.Lock()
	defer v.vmu.Unlock()
	if v.open() != nil {
		v.playing = true
	}
}

// Pause stops playback.
func (v *Video) Pause() {
	v.vmu.Lock()
	defer v.vmu.Unlock()
	v.playing = false
}

// IsPlaying returns whether the video is playing.
func (v *Video) IsPlaying() bool {
	v.vmu.Lock()
	defer v.vmu.Unlock()
	return v.playing
}

// Position returns the time of the current frame.
func (v *Video) Position() time.Duration {
	v.vmu.Lock()
	defer v.vmu.Unlock()
	return v.pos
}

// Seek moves to the given fraction of the video, from 0 to 1,
// and shows the frame there.
func (v *Video) Seek(frac float32) error {
	v.vmu.Lock()
	defer v.vmu.Unlock()
	src := v.open()
	if src == nil {
		if v.IsReleased() {
			return ErrReleased
		}
		return v.err
	}
	t := time.Duration(float64(math32.Clamp(frac, 0, 1)) * float64(src.Duration()))
	if err := src.Seek(t); err != nil {
		return err
	}
	v.readFrame()
	return nil
}

// Advance reads the next frame if playing, returning whether it did.
func (v *Video) Advance() bool {
	v.vmu.Lock()
	defer v.vmu.Unlock()
	if !v.playing || v.source == nil {
		return false
	}
	v.readFrame()
	return v.playing
}

func (v *Video) Render(pc *paint.Painter) {
	sz := v.LogicalSize()
	pc.FillBox(math32.Vector2{}, sz, color.Black)
	v.vmu.Lock()
	v.open()
	frame, pos, playing := v.frame, v.pos, v.playing
	var dur time.Duration
	if v.source != nil {
		dur = v.source.Duration()
	}
	v.vmu.Unlock()

	area := sz
	if v.Controls {
		area.Y = max(0, sz.Y-ControlsHeight)
	}
	pc.DrawImageFit(frame, math32.Vector2{}, area)
	if !v.Controls {
		return
	}
	bar := math32.Vec2(0, area.Y)
	pc.FillBox(bar, math32.Vec2(sz.X, ControlsHeight), color.RGBA{0x20, 0x20, 0x24, 0xe0})
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	if playing {
		pc.FillBox(bar.Add(math32.Vec2(10, 9)), math32.Vec2(4, 14), white)
		pc.FillBox(bar.Add(math32.Vec2(18, 9)), math32.Vec2(4, 14), white)
	} else {
		pc.DrawText("▶", bar.Add(math32.Vec2(9, 8)), paint.TextStyle{Size: 14, Color: white})
	}
	track := v.trackBox(sz)
	pc.FillBox(track.Min, track.Size(), color.RGBA{0x70, 0x70, 0x78, 0xff})
	if dur > 0 {
		fill := track.Size()
		fill.X *= float32(pos) / float32(dur)
		pc.FillBox(track.Min, fill, color.RGBA{0x63, 0x66, 0xf1, 0xff})
	}
}

// trackBox returns the logical box of the seek track.
func (v *Video) trackBox(sz math32.Vector2) math32.Box2 {
	y := sz.Y - ControlsHeight/2 - 2
	return math32.B2(40, y, max(40, sz.X-12), y+4)
}

func (v *Video) HandleEvent(ev events.Event) {
	if !v.Controls || ev.Type() != events.Click {
		return
	}
	sz := v.LogicalSize()
	p := ev.Pos()
	if p.Y < sz.Y-ControlsHeight {
		return
	}
	ev.SetHandled()
	if p.X < 32 {
		if v.IsPlaying() {
			v.Pause()
		} else {
			v.Play()
		}
		return
	}
	track := v.trackBox(sz)
	if w := track.Size().X; w > 0 {
		if err := v.Seek((p.X - track.Min.X) / w); err != nil {
			slog.Error("widget.Video: seeking", "id", v.ID, "err", err)
		}
	}
}

func (v *Video) Destroy() {
	v.Release(func() {
		v.vmu.Lock()
		defer v.vmu.Unlock()
		v.playing = false
		v.frame = nil
		if v.source != nil {
			if err := v.source.Close(); err != nil {
				slog.Error("widget.Video: closing video", "id", v.ID, "err", err)
			}
			v.source = nil
		}
	})
}
