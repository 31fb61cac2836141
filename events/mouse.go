// Copyright (c) 2018, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"fmt"

	"github.com/inkframe/inkframe/math32"
)

// Mouse is a basic mouse event for all mouse events except Scroll
type Mouse struct {
	Base
}

// NewMouse returns a new [Mouse] event of the given type.
func NewMouse(typ Types, but Buttons, where math32.Vector2, mods Modifiers) *Mouse {
	ev := &Mouse{}
	ev.init(typ, where)
	ev.Button = but
	ev.Mods = mods
	return ev
}

// NewDoubleClick returns a left-button [DoubleClick] event at the given point.
func NewDoubleClick(where math32.Vector2) *Mouse {
	return NewMouse(DoubleClick, Left, where, 0)
}

func (ev *Mouse) String() string {
	return fmt.Sprintf("%v{Button: %v, Pos: %v, Time: %v}", ev.Type(), ev.Button, ev.Where, ev.Time().Format("04:05"))
}

func (ev *Mouse) Translated(origin math32.Vector2) Event {
	nev := *ev
	nev.Where = ev.Where.Sub(origin)
	nev.handled = false
	return &nev
}

// MouseScroll is for scroll wheel and trackpad events.
type MouseScroll struct {
	Base

	// Delta is the amount of scrolling in each axis, in pixels.
	Delta math32.Vector2
}

// NewScroll returns a new [MouseScroll] event.
func NewScroll(where, delta math32.Vector2, mods Modifiers) *MouseScroll {
	ev := &MouseScroll{Delta: delta}
	ev.init(Scroll, where)
	ev.Mods = mods
	return ev
}

func (ev *MouseScroll) String() string {
	return fmt.Sprintf("%v{Delta: %v, Pos: %v, Time: %v}", ev.Type(), ev.Delta, ev.Where, ev.Time().Format("04:05"))
}

func (ev *MouseScroll) Translated(origin math32.Vector2) Event {
	nev := *ev
	nev.Where = ev.Where.Sub(origin)
	nev.handled = false
	return &nev
}
