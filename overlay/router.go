// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"sync"

	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/widget"
)

// pointerTypes are the event types forwarded to interactive widgets.
var pointerTypes = []events.Types{events.MouseDown, events.MouseUp, events.MouseMove, events.MouseDrag, events.Click, events.Scroll}

// Router routes pointer events from a surface to the widgets of a
// [Controller], in the Capture phase, before the document sees them.
//
// A double click on an active widget toggles whether it is
// interactive. Pointer events over an interactive widget are sent to
// it in its logical coordinates and do not reach the document; events
// over other widgets pass through. Nothing is routed while the
// controller is read-only.
type Router struct {
	c        *Controller
	sub      *events.Subscription
	stopOnce sync.Once
}

func newRouter(c *Controller, src *events.Source) *Router {
	r := &Router{c: c}
	r.sub = src.On(events.Capture, r.handle, append([]events.Types{events.DoubleClick}, pointerTypes...)...)
	return r
}

// Stop stops routing. It is safe to call more than once.
func (r *Router) Stop() {
	r.stopOnce.Do(r.sub.Release)
}

func (r *Router) handle(ev events.Event) {
	id, w, interactive, ok := r.c.hitTest(ev.Pos())
	if !ok {
		return
	}
	if ev.Type() == events.DoubleClick {
		if _, err := r.c.ToggleInteractive(id); err == nil {
			ev.SetHandled()
		}
		return
	}
	if !interactive {
		return
	}
	if eh, ok := w.(widget.EventHandler); ok {
		p := ev.Pos()
		eh.HandleEvent(ev.Translated(p.Sub(w.AsWidget().ToLocal(p))))
	}
	ev.SetHandled()
}

// hitTest returns the topmost active widget at the viewport point,
// and whether it is interactive. It reports nothing while read-only.
func (c *Controller) hitTest(p math32.Vector2) (string, widget.Widget, bool, bool) {
	c.mu.Lock()
	if c.readOnly || c.closed || c.active.Len() == 0 {
		c.mu.Unlock()
		return "", nil, false, false
	}
	interactive := make(map[string]bool, c.active.Len())
	for id, it := range c.active.All() {
		interactive[id] = it.Interactive
	}
	c.mu.Unlock()

	// the root is only locked after the controller is unlocked,
	// as the controller locks the root while locked itself.
	id, w, ok := c.root.WidgetAt(p, func(id string, _ widget.Widget) bool {
		_, active := interactive[id]
		return active
	})
	if !ok {
		return "", nil, false, false
	}
	return id, w, interactive[id], true
}
