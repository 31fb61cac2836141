// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"fmt"

	"github.com/inkframe/inkframe/base/config"
	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/iox/imagex"
)

// Settings are the tunable parameters of a [Controller].
type Settings struct {

	// SettleDelay is how long capture waits before and after
	// rendering, for pending layout and rendering to flush.
	SettleDelay config.Duration `default:"50ms" toml:"settle_delay" yaml:"settle_delay"`

	// CaptureTimeout bounds the whole of one capture.
	CaptureTimeout config.Duration `default:"5s" toml:"capture_timeout" yaml:"capture_timeout"`

	// CaptureScale is the pixels per logical unit of snapshots.
	CaptureScale float32 `default:"1" toml:"capture_scale" yaml:"capture_scale"`

	// CaptureFormat is the image format of snapshots: png, jpeg or webp.
	CaptureFormat string `default:"png" toml:"capture_format" yaml:"capture_format"`

	// DefaultSize is the logical width and height of placeholders
	// created without a size.
	DefaultSize float32 `default:"320" toml:"default_size" yaml:"default_size"`

	// MaxCaptureDim is the maximum width or height of snapshots in
	// pixels; larger captures are downscaled.
	MaxCaptureDim int `default:"4096" toml:"max_capture_dim" yaml:"max_capture_dim"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	var s Settings
	errors.Log(config.SetFromDefaults(&s))
	return s
}

// OpenSettings reads settings from the given TOML or YAML file,
// over the defaults.
func OpenSettings(filename string) (Settings, error) {
	var s Settings
	if err := config.Open(&s, filename); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Validate returns an error for settings that cannot be used.
func (s *Settings) Validate() error {
	if _, err := s.Format(); err != nil {
		return err
	}
	if s.CaptureScale <= 0 {
		return fmt.Errorf("overlay: capture scale must be positive, not %v", s.CaptureScale)
	}
	if s.DefaultSize <= 0 {
		return fmt.Errorf("overlay: default size must be positive, not %v", s.DefaultSize)
	}
	if s.MaxCaptureDim <= 0 {
		return fmt.Errorf("overlay: max capture dimension must be positive, not %v", s.MaxCaptureDim)
	}
	return nil
}

// Format returns the snapshot image format.
func (s *Settings) Format() (imagex.Formats, error) {
	f, err := imagex.ParseFormat(s.CaptureFormat)
	if err != nil {
		return imagex.None, err
	}
	switch f {
	case imagex.PNG, imagex.JPEG, imagex.WebP:
		return f, nil
	}
	return imagex.None, fmt.Errorf("overlay: unsupported capture format %q", s.CaptureFormat)
}
