// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command inkframe manages the embedded widget overlays of
// vector document snapshots.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/inkframe/inkframe/base/config"
	"github.com/inkframe/inkframe/base/logx"
	"github.com/inkframe/inkframe/cmd/inkframe/cmd"
	"github.com/inkframe/inkframe/video/ffmpeg"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRoot().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	c := &cmd.Config{VideoOpener: ffmpeg.Opener}
	var level string
	root := &cobra.Command{
		Use:           "inkframe",
		Short:         "Manage embedded widget overlays in vector documents",
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if level != "" {
				lv, err := logx.ParseLevel(level)
				if err != nil {
					return err
				}
				logx.UserLevel.Set(lv)
			}
			logx.SetDefault()
			c.Logger = slog.Default()
			return c.LoadSettings()
		},
	}
	root.PersistentFlags().StringVarP(&c.ConfigFile, "config", "c", "", "overlay settings file (toml or yaml)")
	root.PersistentFlags().StringVar(&level, "log-level", "", "log level: debug, info, warn or error")

	var output string
	create := &cobra.Command{
		Use:   "create <resources-file>",
		Short: "Add overlay placeholders for resources to a document snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := cmd.Create(c, args[0], output)
			return err
		},
	}
	create.Flags().StringVarP(&output, "output", "o", "document.excalidraw", "document snapshot to create or extend")

	var watch bool
	snapshot := &cobra.Command{
		Use:   "snapshot <document>",
		Short: "Capture every overlay and write the images back to the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			if watch {
				return cmd.WatchSnapshot(cc.Context(), c, args[0])
			}
			_, err := cmd.Snapshot(cc.Context(), c, args[0])
			return err
		},
	}
	snapshot.Flags().BoolVarP(&watch, "watch", "w", false, "snapshot again when the settings file changes")

	inspect := &cobra.Command{
		Use:   "inspect <document>",
		Short: "Print the overlay placeholders of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			return cmd.Inspect(cc.OutOrStdout(), args[0])
		},
	}

	var yml bool
	var write string
	settings := &cobra.Command{
		Use:   "settings",
		Short: "Print or write the effective overlay settings",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			if write != "" {
				return c.WriteSettings(write)
			}
			f := config.TOML
			if yml {
				f = config.YAML
			}
			b, err := config.Marshal(c.Settings, f)
			if err != nil {
				return err
			}
			_, err = cc.OutOrStdout().Write(b)
			return err
		},
	}
	settings.Flags().BoolVar(&yml, "yaml", false, "print as yaml instead of toml")
	settings.Flags().StringVar(&write, "write", "", "write to this file (toml or yaml) instead of printing")

	root.AddCommand(create, snapshot, inspect, settings)
	return root
}
