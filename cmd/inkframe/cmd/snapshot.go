// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"path/filepath"

	"github.com/inkframe/inkframe/base/config"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/overlay"
	"github.com/inkframe/inkframe/widget"
)

// Snapshot mounts every live overlay placeholder in the document
// snapshot at filename, then unmounts them so that each one is
// captured, and saves the document with the new image references.
// Relative image paths are resolved against the directory of filename.
// It returns the number of snapshots written.
func Snapshot(ctx context.Context, c *Config, filename string) (int, error) {
	s, err := document.OpenSnapshot(filename)
	if err != nil {
		return 0, err
	}
	doc := document.NewMemory()
	doc.Restore(s)

	f := widget.NewDefaultFactory(widget.NewRegistry())
	f.Loader = relativeLoader(filepath.Dir(filename))
	f.VideoOpener = c.VideoOpener

	var written []string
	ctrl := overlay.New(doc,
		overlay.WithFactory(f),
		overlay.WithSettings(c.Settings),
		overlay.WithLogger(c.logger()),
		overlay.WithSnapshotHandler(func(id, uri string) {
			written = append(written, id)
			c.logger().Debug("snapshot written", "id", id, "bytes", len(uri))
		}),
	)
	defer ctrl.Close()

	var ids []string
	for _, el := range doc.Elements() {
		if _, ok := el.Overlay(); ok && !el.IsDeleted {
			ids = append(ids, el.ID)
		}
	}
	ctrl.Follow()
	doc.SetSelection(ids...)
	doc.SetSelection()

	done := make(chan struct{})
	go func() {
		ctrl.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	if err := doc.Snapshot("inkframe").Save(filename); err != nil {
		return 0, err
	}
	c.logger().Info("snapshots written", "count", len(written), "overlays", len(ids), "file", filename)
	return len(written), nil
}

// WatchSnapshot runs [Snapshot] once, and again each time the
// settings file changes, until ctx is done.
func WatchSnapshot(ctx context.Context, c *Config, filename string) error {
	if _, err := Snapshot(ctx, c, filename); err != nil {
		return err
	}
	if c.ConfigFile == "" {
		c.logger().Warn("no settings file to watch")
		return nil
	}
	changed := make(chan struct{}, 1)
	err := config.Watch(ctx, c.ConfigFile, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	c.logger().Info("watching settings", "file", c.ConfigFile)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := c.LoadSettings(); err != nil {
				c.logger().Error("reloading settings", "err", err)
				continue
			}
			if _, err := Snapshot(ctx, c, filename); err != nil {
				c.logger().Error("snapshot", "err", err)
			}
		}
	}
}
