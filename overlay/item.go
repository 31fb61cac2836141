// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"context"
	"fmt"

	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/widget"
)

// State is the lifecycle state of an overlay id.
type State int32

const (
	// Inactive ids have no item.
	Inactive State = iota

	// Active items are mounted, positioned, and can be interactive.
	Active

	// PendingRemoval items are being captured before they are destroyed.
	// They are not interactive and keep their last position.
	PendingRemoval
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "Inactive"
	case Active:
		return "Active"
	case PendingRemoval:
		return "PendingRemoval"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Item is the runtime record of a mounted widget.
type Item struct {
	ID   string
	Kind document.Kind

	// ElementID is the id of the placeholder element, which
	// snapshots are written to. It usually equals ID.
	ElementID string

	// Widget is owned by the controller.
	Widget widget.Widget

	// Interactive is the stored interactive flag. The widget is only
	// interactive while this is set, the item is active, and the
	// controller is not read-only.
	Interactive bool

	// State is the lifecycle state.
	State State

	// generation is incremented on each transition into and out of
	// PendingRemoval; a capture only applies if it is unchanged.
	generation uint64

	// cancel stops the running capture, if any.
	cancel context.CancelFunc
}

// stopCapture cancels the running capture, if any.
func (it *Item) stopCapture() {
	if it.cancel != nil {
		it.cancel()
		it.cancel = nil
	}
}

// Generation returns the generation of the item.
func (it *Item) Generation() uint64 {
	return it.generation
}
