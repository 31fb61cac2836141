// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"fmt"

	"github.com/inkframe/inkframe/base/errors"
)

var (
	// ErrNotActive is returned for an id that has no active item.
	ErrNotActive = errors.New("overlay: no active item")

	// ErrReadOnly is returned when making an item interactive
	// in read-only mode.
	ErrReadOnly = errors.New("overlay: read-only")
)

// CaptureError is the error for a failed snapshot capture.
// The item is destroyed without a snapshot.
type CaptureError struct {
	ID  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("overlay: capturing %q: %v", e.ID, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// MissingLayoutError is the error for a document that is not laid
// out yet. Positions use a zero offset until it is.
type MissingLayoutError struct {

	// What is the part that is not laid out.
	What string
}

func (e *MissingLayoutError) Error() string {
	return fmt.Sprintf("overlay: %s is not laid out", e.What)
}
