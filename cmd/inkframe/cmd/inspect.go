// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"

	"github.com/inkframe/inkframe/base/iox/imagex"
	"github.com/inkframe/inkframe/document"
	"github.com/sanity-io/litter"
)

// OverlayInfo is a summary of one overlay placeholder.
type OverlayInfo struct {
	ID        string
	Kind      document.Kind
	URL       string
	Component string
	Box       [4]float32
	Version   int
	Deleted   bool
	Snapshot  string
}

// Overlays returns a summary of the overlay placeholders in the
// document snapshot at filename.
func Overlays(filename string) ([]OverlayInfo, error) {
	s, err := document.OpenSnapshot(filename)
	if err != nil {
		return nil, err
	}
	var infos []OverlayInfo
	for i := range s.Elements {
		el := &s.Elements[i]
		md, ok := el.Overlay()
		if !ok {
			continue
		}
		infos = append(infos, OverlayInfo{
			ID:        md.ID,
			Kind:      md.Kind,
			URL:       md.URL,
			Component: md.Component,
			Box:       [4]float32{el.X, el.Y, el.Width, el.Height},
			Version:   el.Version,
			Deleted:   el.IsDeleted,
			Snapshot:  describeSnapshot(md.Snapshot),
		})
	}
	return infos, nil
}

// describeSnapshot summarizes an image data URI.
func describeSnapshot(uri string) string {
	if uri == "" {
		return ""
	}
	mime, data, err := imagex.DecodeDataURI(uri)
	if err != nil {
		return "invalid: " + err.Error()
	}
	return fmt.Sprintf("%s, %d bytes", mime, len(data))
}

// Inspect writes the overlays of the document snapshot at filename to w.
func Inspect(w io.Writer, filename string) error {
	infos, err := Overlays(filename)
	if err != nil {
		return err
	}
	opts := litter.Options{HidePrivateFields: true, StripPackageNames: true}
	_, err = fmt.Fprintln(w, opts.Sdump(infos))
	return err
}
