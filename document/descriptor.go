// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

// Descriptor is a caller-supplied description of one embedded resource.
// Geometry fields are optional; nil means use the default.
type Descriptor struct {

	// ID is the unique id of the resource, which is also the id of
	// its placeholder element.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Kind is the kind of resource.
	Kind Kind `json:"type" yaml:"type" toml:"type"`

	// Content is the inline content, such as markdown source.
	Content string `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`

	// URL is the location of external content, such as an image.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`

	// Component is the registered constructor name for [Custom] kinds.
	Component string `json:"component,omitempty" yaml:"component,omitempty" toml:"component,omitempty"`

	X      *float32 `json:"x,omitempty" yaml:"x,omitempty" toml:"x,omitempty"`
	Y      *float32 `json:"y,omitempty" yaml:"y,omitempty" toml:"y,omitempty"`
	Width  *float32 `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height *float32 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
}

// Geometry returns the position and size of the descriptor,
// using 0 for a missing position and defaultSize for a missing size.
func (d *Descriptor) Geometry(defaultSize float32) (x, y, w, h float32) {
	w, h = defaultSize, defaultSize
	if d.X != nil {
		x = *d.X
	}
	if d.Y != nil {
		y = *d.Y
	}
	if d.Width != nil {
		w = *d.Width
	}
	if d.Height != nil {
		h = *d.Height
	}
	return
}

// Ptr returns a pointer to v, for filling in optional fields.
func Ptr[T any](v T) *T {
	return &v
}
