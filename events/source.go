// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"sync"
)

// Phases are the stages of dispatch on a [Source].
type Phases int32

const (
	// Capture listeners run first, before any Bubble listener,
	// and can stop an event from reaching the Bubble phase
	// by marking it handled.
	Capture Phases = iota

	// Bubble listeners run after Capture listeners,
	// and are where surfaces install their default behavior.
	Bubble
)

// Source is a dispatcher of events to listeners, in two phases.
// It is safe for concurrent use. Listeners may add or release
// subscriptions while an event is being dispatched; the change
// applies to the next event.
type Source struct {
	mu     sync.Mutex
	phases [2]Listeners
	nextID uint64
}

// NewSource returns a new [Source].
func NewSource() *Source {
	return &Source{}
}

// On adds fun as a listener for the given event types in the given phase.
// The returned [Subscription] removes it.
func (s *Source) On(phase Phases, fun func(ev Event), types ...Types) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	for _, typ := range types {
		s.phases[phase].Add(typ, id, fun)
	}
	return &Subscription{release: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, typ := range types {
			s.phases[phase].Remove(typ, id)
		}
	}}
}

// Dispatch sends the event to Capture listeners and then
// to Bubble listeners, stopping once the event is handled.
// It returns whether the event was handled.
func (s *Source) Dispatch(ev Event) bool {
	s.mu.Lock()
	capture := s.phases[Capture][ev.Type()]
	bubble := s.phases[Bubble][ev.Type()]
	s.mu.Unlock()

	callAll(capture, ev)
	callAll(bubble, ev)
	return ev.IsHandled()
}

// NumListeners returns the number of listeners for the given
// phase and type.
func (s *Source) NumListeners(phase Phases, typ Types) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[phase].Len(typ)
}

// Subscription is a handle on listeners added with [Source.On].
type Subscription struct {
	once    sync.Once
	release func()
}

// Release removes the listeners. It is safe to call more than once,
// and on a nil Subscription.
func (sub *Subscription) Release() {
	if sub == nil {
		return
	}
	sub.once.Do(sub.release)
}
