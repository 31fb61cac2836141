// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package document defines the scene elements that overlay widgets are
// bound to, the [Model] interface through which they are read and
// written, and [Memory], an in-memory implementation of it.
package document

import "fmt"

// Kind is the kind of embedded resource an overlay displays.
type Kind string

const (
	Image    Kind = "image"
	Markdown Kind = "markdown"
	Video    Kind = "video"
	App      Kind = "app"

	// Custom resources are built by a registered constructor,
	// named by [Descriptor.Component].
	Custom Kind = "custom"
)

// Kinds are all of the valid kinds.
var Kinds = []Kind{Image, Markdown, Video, App, Custom}

// IsValid returns whether k is one of [Kinds].
func (k Kind) IsValid() bool {
	switch k {
	case Image, Markdown, Video, App, Custom:
		return true
	}
	return false
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("document: unknown resource kind %q", s)
	}
	return k, nil
}
