// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx provides the default slog handler used by inkframe
// programs: level-coloured text output with a user-settable level.
package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// UserLevel is the verbosity [slog.Level] that the user has selected
// for what logging and printing messages should be shown. Messages at
// levels at or above this level will be shown. It is LevelDebug in
// debug builds, LevelWarn in release builds and LevelInfo otherwise.
var UserLevel = func() *slog.LevelVar {
	lv := &slog.LevelVar{}
	lv.Set(defaultUserLevel)
	return lv
}()

// Handler is a text [slog.Handler] that prefixes each record with
// its level name, colored when the output is a terminal.
type Handler struct {
	out   *termenv.Output
	w     io.Writer
	mu    *sync.Mutex
	buf   *bytes.Buffer
	inner slog.Handler
}

// NewHandler returns a [Handler] writing to w. Its level is [UserLevel].
func NewHandler(w io.Writer, opts ...termenv.OutputOption) *Handler {
	h := &Handler{out: termenv.NewOutput(w, opts...), w: w, mu: &sync.Mutex{}, buf: &bytes.Buffer{}}
	h.inner = slog.NewTextHandler(h.buf, &slog.HandlerOptions{
		Level: UserLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return h
}

func (h *Handler) Enabled(ctx context.Context, lv slog.Level) bool {
	return h.inner.Enabled(ctx, lv)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	lv := h.out.String(fmt.Sprintf("%-5s", r.Level.String())).Foreground(LevelColor(h.out, r.Level))
	_, err := fmt.Fprintf(h.w, "%s %s", lv, h.buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.inner = h.inner.WithAttrs(attrs)
	return &nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.inner = h.inner.WithGroup(name)
	return &nh
}

// SetDefault installs a [NewHandler] writing to os.Stderr as the
// default slog logger.
func SetDefault() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr)))
}

// LevelColor returns the color used for the given level name.
func LevelColor(out *termenv.Output, lv slog.Level) termenv.Color {
	switch {
	case lv >= slog.LevelError:
		return out.Color("#ef4444")
	case lv >= slog.LevelWarn:
		return out.Color("#f59e0b")
	case lv >= slog.LevelInfo:
		return out.Color("#6366f1")
	default:
		return out.Color("#a1a1aa")
	}
}

// ParseLevel parses a level name (debug, info, warn, error),
// case insensitive.
func ParseLevel(s string) (slog.Level, error) {
	var lv slog.Level
	err := lv.UnmarshalText([]byte(strings.TrimSpace(s)))
	if err != nil {
		return lv, fmt.Errorf("logx: invalid level %q: %w", s, err)
	}
	return lv, nil
}

// PrintlnDebug prints the given arguments to standard output if
// [UserLevel] is [slog.LevelDebug] or lower.
func PrintlnDebug(v ...any) {
	if UserLevel.Level() <= slog.LevelDebug {
		fmt.Println(v...)
	}
}

// PrintlnInfo prints the given arguments to standard output if
// [UserLevel] is [slog.LevelInfo] or lower.
func PrintlnInfo(v ...any) {
	if UserLevel.Level() <= slog.LevelInfo {
		fmt.Println(v...)
	}
}
