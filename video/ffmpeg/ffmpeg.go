// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ffmpeg provides a [widget.FrameSource] that decodes video
// files with ffmpeg. It requires cgo and the ffmpeg libraries.
package ffmpeg

import (
	"fmt"
	"image"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/cogentcore/reisen"
	"github.com/inkframe/inkframe/widget"
)

// Source decodes the first video stream of a media file.
type Source struct {
	media    *reisen.Media
	stream   *reisen.VideoStream
	duration time.Duration
}

// Open opens the video at the given path or file URL for decoding.
func Open(path string) (*Source, error) {
	if strings.Contains(path, "://") {
		u, err := url.Parse(path)
		if err != nil {
			return nil, err
		}
		if u.Scheme != "file" {
			return nil, fmt.Errorf("ffmpeg: unsupported URL scheme %q", u.Scheme)
		}
		path = u.Path
	}
	media, err := reisen.NewMedia(path)
	if err != nil {
		return nil, err
	}
	streams := media.VideoStreams()
	if len(streams) == 0 {
		media.Close()
		return nil, fmt.Errorf("ffmpeg: %q has no video stream", path)
	}
	dur, err := media.Duration()
	if err != nil {
		media.Close()
		return nil, err
	}
	if err := media.OpenDecode(); err != nil {
		media.Close()
		return nil, err
	}
	s := &Source{media: media, stream: streams[0], duration: dur}
	if err := s.stream.Open(); err != nil {
		media.CloseDecode()
		media.Close()
		return nil, err
	}
	return s, nil
}

// Opener is a [widget.VideoOpener] that opens videos with [Open].
func Opener(path string) (widget.FrameSource, error) {
	return Open(path)
}

// NextFrame reads packets until it decodes the next frame
// of the video stream.
func (s *Source) NextFrame() (image.Image, time.Duration, error) {
	for {
		packet, gotPacket, err := s.media.ReadPacket()
		if err != nil {
			return nil, 0, err
		}
		if !gotPacket {
			return nil, 0, io.EOF
		}
		if packet.Type() != reisen.StreamVideo || packet.StreamIndex() != s.stream.Index() {
			continue
		}
		frame, gotFrame, err := s.stream.ReadVideoFrame()
		if err != nil {
			return nil, 0, err
		}
		if !gotFrame {
			return nil, 0, io.EOF
		}
		if frame == nil {
			continue
		}
		t, err := frame.PresentationOffset()
		if err != nil {
			return nil, 0, err
		}
		return frame.Image(), t, nil
	}
}

func (s *Source) Seek(t time.Duration) error {
	return s.stream.Rewind(t)
}

func (s *Source) Duration() time.Duration {
	return s.duration
}

func (s *Source) Close() error {
	err := s.stream.Close()
	s.media.CloseDecode()
	s.media.Close()
	return err
}
