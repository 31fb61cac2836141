// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"fmt"

	"github.com/inkframe/inkframe/document"
)

// Factory builds and destroys the widgets for resources.
type Factory interface {

	// Create builds the widget for the given resource. It returns an
	// [*UnsupportedKindError] for resources it cannot build.
	Create(d document.Descriptor) (Widget, error)

	// Destroy releases the widget. It is called exactly once per widget.
	Destroy(w Widget)
}

// DefaultFactory builds the standard widget for each [document.Kind],
// and custom widgets from its [Registry].
type DefaultFactory struct {

	// Registry has the constructors for custom widgets.
	Registry *Registry

	// Loader loads images. If nil, [FileLoader] is used.
	Loader Loader

	// VideoOpener opens videos. If nil, videos show no frames.
	VideoOpener VideoOpener

	// AppLauncher launches apps. If nil, apps show a placeholder frame.
	AppLauncher AppLauncher
}

// NewDefaultFactory returns a new [DefaultFactory] with the given registry.
func NewDefaultFactory(reg *Registry) *DefaultFactory {
	return &DefaultFactory{Registry: reg}
}

// Supports returns nil if the factory can build the resource, and
// otherwise an [*UnsupportedKindError], without building anything.
func (f *DefaultFactory) Supports(d document.Descriptor) error {
	switch d.Kind {
	case document.Image, document.Markdown, document.Video, document.App:
		return nil
	case document.Custom:
		if _, ok := f.Registry.Lookup(d.Component); ok {
			return nil
		}
		return &UnsupportedKindError{Kind: d.Kind, Component: d.Component, Suggestion: closest(d.Component, f.Registry.Names())}
	}
	names := make([]string, len(document.Kinds))
	for i, k := range document.Kinds {
		names[i] = string(k)
	}
	return &UnsupportedKindError{Kind: d.Kind, Suggestion: closest(string(d.Kind), names)}
}

func (f *DefaultFactory) Create(d document.Descriptor) (Widget, error) {
	if err := f.Supports(d); err != nil {
		return nil, err
	}
	switch d.Kind {
	case document.Image:
		loader := f.Loader
		if loader == nil {
			loader = FileLoader{}
		}
		return NewImage(d, loader), nil
	case document.Markdown:
		return NewMarkdown(d), nil
	case document.Video:
		return NewVideo(d, f.VideoOpener), nil
	case document.App:
		return NewApp(d, f.AppLauncher), nil
	}
	c, _ := f.Registry.Lookup(d.Component)
	w, err := c(d)
	if err != nil {
		return nil, fmt.Errorf("widget: building custom component %q: %w", d.Component, err)
	}
	wb := w.AsWidget()
	if wb.ID == "" {
		wb.ID = d.ID
	}
	wb.Kind = document.Custom
	wb.AddClass(ClassItem, KindClass(document.Custom))
	return w, nil
}

func (f *DefaultFactory) Destroy(w Widget) {
	w.Destroy()
}
