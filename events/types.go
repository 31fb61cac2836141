// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import "fmt"

// Types determines the type of pointer event, and also the
// level at which one can select which events to listen to.
// The standard [JavaScript Event] names provide the basis for
// the event type names.
//
// [JavaScript Event]: https://developer.mozilla.org/en-US/docs/Web/Events
type Types int32

const (
	// zero value is an unknown type
	UnknownType Types = iota

	// MouseDown happens when a mouse button is pressed down. See Button for which.
	MouseDown

	// MouseUp happens when a mouse button is released. See Button for which.
	MouseUp

	// MouseMove is sent when the mouse is moving.
	MouseMove

	// MouseDrag is sent when the mouse is moving and there
	// is a button down.
	MouseDrag

	// Click represents a MouseDown followed by MouseUp in sequence on the
	// same element, with the same button.
	Click

	// DoubleClick represents two Click events in a row in rapid succession.
	DoubleClick

	// Scroll is for a scroll wheel or trackpad gesture, with a [MouseScroll.Delta].
	Scroll

	// MouseEnter is when the mouse enters the bounding box of an element.
	MouseEnter

	// MouseLeave is when the mouse leaves the bounding box of an element.
	MouseLeave

	typesN
)

var typesNames = [...]string{"UnknownType", "MouseDown", "MouseUp", "MouseMove", "MouseDrag", "Click", "DoubleClick", "Scroll", "MouseEnter", "MouseLeave"}

func (tp Types) String() string {
	if tp < 0 || tp >= typesN {
		return fmt.Sprintf("Types(%d)", int(tp))
	}
	return typesNames[tp]
}

// IsPointer returns whether the type is one that is forwarded
// to an interactive surface under the pointer.
func (tp Types) IsPointer() bool {
	switch tp {
	case MouseDown, MouseUp, MouseMove, MouseDrag, Click, Scroll:
		return true
	}
	return false
}

// Buttons is a mouse button.
type Buttons int32

const (
	NoButton Buttons = iota
	Left
	Middle
	Right
)

func (b Buttons) String() string {
	switch b {
	case Left:
		return "Left"
	case Middle:
		return "Middle"
	case Right:
		return "Right"
	}
	return "NoButton"
}

// Modifiers is a bitflag set of keyboard modifier keys held during an event.
type Modifiers int32

const (
	Shift Modifiers = 1 << iota
	Control
	Alt
	Meta
)

// Has returns whether all of the given modifiers are set.
func (m Modifiers) Has(o Modifiers) bool {
	return m&o == o
}
