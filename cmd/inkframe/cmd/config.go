// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmd implements the commands of the inkframe tool.
package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/inkframe/inkframe/base/config"
	"github.com/inkframe/inkframe/overlay"
	"github.com/inkframe/inkframe/widget"
)

// Config is the configuration shared by all commands.
type Config struct {

	// ConfigFile is the overlay settings file, if any.
	ConfigFile string

	// Settings are the overlay settings, from ConfigFile or the defaults.
	Settings overlay.Settings

	// Logger is the logger for commands and the controller.
	Logger *slog.Logger

	// VideoOpener opens videos for snapshots. If nil, videos
	// are captured without a frame.
	VideoOpener widget.VideoOpener
}

// LoadSettings reads Settings from ConfigFile, or sets the defaults
// if there is no ConfigFile.
func (c *Config) LoadSettings() error {
	if c.ConfigFile == "" {
		c.Settings = overlay.DefaultSettings()
		return nil
	}
	s, err := overlay.OpenSettings(c.ConfigFile)
	if err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// WriteSettings saves Settings to filename, in the format of its
// extension, so that it can be used as a ConfigFile.
func (c *Config) WriteSettings(filename string) error {
	if err := config.Save(c.Settings, filename); err != nil {
		return err
	}
	c.logger().Info("settings written", "file", filename)
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// relativeLoader returns a loader that resolves relative paths
// against dir.
func relativeLoader(dir string) widget.Loader {
	fl := widget.FileLoader{MaxSize: 256 << 20}
	return widget.LoaderFunc(func(ctx context.Context, u string) ([]byte, error) {
		return fl.Load(ctx, resolve(dir, u))
	})
}

// resolve joins relative local paths to dir.
func resolve(dir, u string) string {
	if strings.HasPrefix(u, "data:") || strings.Contains(u, "://") || strings.HasPrefix(u, "~") || filepath.IsAbs(u) {
		return u
	}
	return filepath.Join(dir, u)
}
