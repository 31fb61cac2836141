// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

// Listeners registers lists of event listener functions
// to receive different event types.
// Listeners are closure methods with all context captured,
// registered on specific objects. Each added function gets
// an id that can be used to remove it again.
type Listeners map[Types][]listener

type listener struct {
	id  uint64
	fun func(ev Event)
}

// Init ensures that map is constructed
func (ls *Listeners) Init() {
	if *ls != nil {
		return
	}
	*ls = make(map[Types][]listener)
}

// Add adds a function for given type under the given id.
func (ls *Listeners) Add(typ Types, id uint64, fun func(Event)) {
	ls.Init()
	(*ls)[typ] = append((*ls)[typ], listener{id: id, fun: fun})
}

// Remove removes the function for given type with given id,
// returning whether it was found.
func (ls *Listeners) Remove(typ Types, id uint64) bool {
	ets := (*ls)[typ]
	for i, l := range ets {
		if l.id == id {
			nets := make([]listener, 0, len(ets)-1)
			nets = append(nets, ets[:i]...)
			(*ls)[typ] = append(nets, ets[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of functions registered for given type.
func (ls *Listeners) Len(typ Types) int {
	return len((*ls)[typ])
}

// Call calls all functions for given event.
// It goes in _reverse_ order to the last functions added are the first called
// and it stops when the event is marked as Handled.  This allows for a natural
// and optional override behavior, as compared to requiring more complex
// priority-based mechanisms.
func (ls *Listeners) Call(ev Event) {
	callAll((*ls)[ev.Type()], ev)
}

func callAll(ets []listener, ev Event) {
	if ev.IsHandled() {
		return
	}
	for i := len(ets) - 1; i >= 0; i-- {
		ets[i].fun(ev)
		if ev.IsHandled() {
			break
		}
	}
}
