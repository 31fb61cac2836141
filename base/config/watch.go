// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// Watch calls fn each time the given file is written or re-created,
// until ctx is done. It watches the parent directory so that editors
// which replace the file on save are still seen. It returns once the
// watcher is set up; events are handled on a separate goroutine.
func Watch(ctx context.Context, filename string, fn func()) error {
	fn0, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(fn0)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					fn()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("config file watcher error", "file", abs, "err", err)
			}
		}
	}()
	return nil
}
