// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events defines pointer events and a [Source] that
// dispatches them to listeners in capture and bubble phases.
package events

import (
	"fmt"
	"time"

	"github.com/inkframe/inkframe/math32"
)

// Event is the interface for all events.
type Event interface {
	fmt.Stringer

	// Type returns the type of event.
	Type() Types

	// Time returns the time at which the event was generated.
	Time() time.Time

	// Pos returns the position of the event, in viewport coordinates.
	Pos() math32.Vector2

	// IsHandled returns whether this event has already been processed.
	IsHandled() bool

	// SetHandled marks the event as handled, which stops any
	// further dispatch.
	SetHandled()

	// Translated returns an unhandled copy of the event with its
	// position moved by -origin, for delivery in local coordinates.
	Translated(origin math32.Vector2) Event
}

// Base is the base type for events.
type Base struct {

	// Typ is the type of event.
	Typ Types

	// GenTime records the time when the event was first generated.
	GenTime time.Time

	// Where is the event location, in viewport coordinates.
	Where math32.Vector2

	// Button is the mouse button being pressed or released, if relevant.
	Button Buttons

	// Mods are the modifier keys present at time of event.
	Mods Modifiers

	handled bool
}

func (ev *Base) Type() Types         { return ev.Typ }
func (ev *Base) Time() time.Time     { return ev.GenTime }
func (ev *Base) Pos() math32.Vector2 { return ev.Where }
func (ev *Base) IsHandled() bool     { return ev.handled }
func (ev *Base) SetHandled()         { ev.handled = true }

func (ev *Base) init(typ Types, where math32.Vector2) {
	ev.Typ = typ
	ev.Where = where
	ev.GenTime = time.Now()
}
