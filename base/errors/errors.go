// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides error handling helpers on top of the
// standard library errors package, which it also wraps so that
// one import serves both.
package errors

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
)

// Log logs the error, if non-nil, to the default logger with the
// location of the caller, and returns it. The intended usage is:
//
//	errors.Log(MyFunc(v))
//	// or
//	return errors.Log(MyFunc(v))
func Log(err error) error {
	if err != nil {
		logError(err)
	}
	return err
}

// Log1 returns the value, logging the error like [Log] if it is
// non-nil. The intended usage is:
//
//	a := errors.Log1(MyFunc(v))
func Log1[T any](v T, err error) T {
	if err != nil {
		logError(err)
	}
	return v
}

// Must1 returns the value, and panics if the error is non-nil.
// It is for errors that can only come from a programming mistake,
// such as parsing embedded data. The intended usage is:
//
//	a := errors.Must1(MyFunc(v))
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func logError(err error) {
	slog.Default().Log(context.Background(), slog.LevelError, err.Error(), "caller", callerInfo(3))
}

// callerInfo returns the function, file and line of the caller
// skip frames up.
func callerInfo(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return runtime.FuncForPC(pc).Name() + " " + file + ":" + strconv.Itoa(line)
}
