// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"fmt"
	"slices"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/inkframe/inkframe/document"
)

// Constructor builds a custom widget for a resource.
type Constructor func(d document.Descriptor) (Widget, error)

// Registry maps component names to constructors of custom widgets.
// It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns a new empty [Registry].
func NewRegistry() *Registry {
	return &Registry{constructors: map[string]Constructor{}}
}

// Register adds a constructor under the given name, replacing
// any existing one.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.constructors == nil {
		r.constructors = map[string]Constructor{}
	}
	r.constructors[name] = c
}

// Lookup returns the constructor for the given name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.constructors[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// UnsupportedKindError is returned when a widget cannot be built
// for a resource, because its kind is unknown, or it is a custom
// kind whose component is not registered.
type UnsupportedKindError struct {
	Kind      document.Kind
	Component string

	// Suggestion is the closest known name, if any is close.
	Suggestion string
}

func (e *UnsupportedKindError) Error() string {
	what := fmt.Sprintf("kind %q", e.Kind)
	if e.Kind == document.Custom {
		what = fmt.Sprintf("custom component %q", e.Component)
	}
	msg := "widget: unsupported " + what
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// suggestionThreshold is the minimum similarity for a suggestion.
const suggestionThreshold = 0.5

// closest returns the candidate most similar to name, or ""
// if none is similar enough.
func closest(name string, candidates []string) string {
	best, bestSim := "", suggestionThreshold
	lev := metrics.NewLevenshtein()
	for _, c := range candidates {
		if sim := strutil.Similarity(name, c, lev); sim >= bestSim {
			best, bestSim = c, sim
		}
	}
	return best
}
