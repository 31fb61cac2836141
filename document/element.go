// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

import (
	"encoding/json"
	"math/rand/v2"
	"time"

	"github.com/inkframe/inkframe/math32"
)

// Placeholder styling.
const (
	PlaceholderStroke      = "#6366f1"
	PlaceholderBackground  = "rgba(99, 102, 241, 0.05)"
	PlaceholderFillStyle   = "solid"
	PlaceholderStrokeWidth = 2
	PlaceholderStrokeStyle = "dashed"
)

// Element is a scene element in the document, in the scene file format.
// Overlay placeholders are rectangles whose [Element.CustomData]
// carries the resource they display.
type Element struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	X               float32   `json:"x"`
	Y               float32   `json:"y"`
	Width           float32   `json:"width"`
	Height          float32   `json:"height"`
	Angle           float32   `json:"angle"`
	StrokeColor     string    `json:"strokeColor"`
	BackgroundColor string    `json:"backgroundColor"`
	FillStyle       string    `json:"fillStyle"`
	StrokeWidth     float32   `json:"strokeWidth"`
	StrokeStyle     string    `json:"strokeStyle"`
	Roughness       float32   `json:"roughness"`
	Opacity         float32   `json:"opacity"`
	GroupIDs        []string  `json:"groupIds"`
	Seed            int64     `json:"seed"`
	Version         int       `json:"version"`
	VersionNonce    int64     `json:"versionNonce"`
	IsDeleted       bool      `json:"isDeleted"`
	Locked          bool      `json:"locked"`
	Link            *string   `json:"link"`
	Updated         int64     `json:"updated"`
	CustomData      *Metadata `json:"customData,omitempty"`
}

// Metadata is the overlay data stored on a placeholder element.
type Metadata struct {
	ID        string `json:"overlayId"`
	Kind      Kind   `json:"overlayType"`
	Content   string `json:"overlayContent,omitempty"`
	URL       string `json:"overlayUrl,omitempty"`
	Component string `json:"overlayComponent,omitempty"`

	// Snapshot is the image data URI written back when the
	// overlay was last unmounted.
	Snapshot string `json:"overlaySnapshot,omitempty"`
}

// UnmarshalJSON decodes the metadata, also accepting the kind
// under "overlayKind" when "overlayType" is absent.
func (md *Metadata) UnmarshalJSON(b []byte) error {
	type plain Metadata
	var aux struct {
		plain
		AltKind Kind `json:"overlayKind"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*md = Metadata(aux.plain)
	if md.Kind == "" {
		md.Kind = aux.AltKind
	}
	return nil
}

// Box returns the scene-space bounding box of the element.
func (el *Element) Box() math32.Box2 {
	return math32.B2FromSize(math32.Vec2(el.X, el.Y), math32.Vec2(el.Width, el.Height))
}

// Overlay returns the overlay metadata of the element,
// and false if it is not an overlay placeholder.
func (el *Element) Overlay() (*Metadata, bool) {
	if el.CustomData == nil || el.CustomData.ID == "" || el.CustomData.Kind == "" {
		return nil, false
	}
	return el.CustomData, true
}

// Touch bumps the version of the element after a change.
func (el *Element) Touch() {
	el.Version++
	el.VersionNonce = randomSeed()
	el.Updated = time.Now().UnixMilli()
}

func randomSeed() int64 {
	return rand.Int64N(1 << 31)
}

// NewPlaceholder returns the placeholder element for the given descriptor.
func NewPlaceholder(d Descriptor, defaultSize float32) Element {
	x, y, w, h := d.Geometry(defaultSize)
	return Element{
		ID:              d.ID,
		Type:            "rectangle",
		X:               x,
		Y:               y,
		Width:           w,
		Height:          h,
		StrokeColor:     PlaceholderStroke,
		BackgroundColor: PlaceholderBackground,
		FillStyle:       PlaceholderFillStyle,
		StrokeWidth:     PlaceholderStrokeWidth,
		StrokeStyle:     PlaceholderStrokeStyle,
		Roughness:       0,
		Opacity:         100,
		GroupIDs:        []string{},
		Seed:            randomSeed(),
		Version:         1,
		VersionNonce:    randomSeed(),
		Updated:         time.Now().UnixMilli(),
		CustomData: &Metadata{
			ID:        d.ID,
			Kind:      d.Kind,
			Content:   d.Content,
			URL:       d.URL,
			Component: d.Component,
		},
	}
}

// DescriptorFromElement recovers the descriptor of an overlay
// placeholder, with the element's current geometry.
// It returns false if the element is not an overlay placeholder.
func DescriptorFromElement(el *Element) (Descriptor, bool) {
	md, ok := el.Overlay()
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{
		ID:        md.ID,
		Kind:      md.Kind,
		Content:   md.Content,
		URL:       md.URL,
		Component: md.Component,
		X:         Ptr(el.X),
		Y:         Ptr(el.Y),
		Width:     Ptr(el.Width),
		Height:    Ptr(el.Height),
	}, true
}
