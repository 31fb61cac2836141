// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paint

import (
	"sync"

	"github.com/inkframe/inkframe/base/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Families are the built-in font families.
type Families int32

const (
	// SansSerif is Go Regular.
	SansSerif Families = iota

	// Bold is Go Bold.
	Bold

	// Monospace is Go Mono.
	Monospace
)

type faceKey struct {
	family Families
	size   float32
}

var faces = struct {
	sync.Mutex
	fonts map[Families]*opentype.Font
	faces map[faceKey]font.Face
}{fonts: map[Families]*opentype.Font{}, faces: map[faceKey]font.Face{}}

func fontData(family Families) []byte {
	switch family {
	case Bold:
		return gobold.TTF
	case Monospace:
		return gomono.TTF
	}
	return goregular.TTF
}

// Face returns a cached face for the given family at the given size
// in pixels. Faces are not safe for concurrent use; callers drawing
// on separate goroutines must use [FaceLock].
func Face(family Families, size float32) font.Face {
	faces.Lock()
	defer faces.Unlock()
	return faceLocked(family, size)
}

func faceLocked(family Families, size float32) font.Face {
	size = max(1, size)
	key := faceKey{family, size}
	if f, ok := faces.faces[key]; ok {
		return f
	}
	fnt, ok := faces.fonts[family]
	if !ok {
		fnt = errors.Must1(opentype.Parse(fontData(family)))
		faces.fonts[family] = fnt
	}
	f := errors.Must1(opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	}))
	faces.faces[key] = f
	return f
}

// FaceLock calls fn with the face for the given family and size while
// holding the face cache lock, so that measuring and drawing with it
// is safe from multiple goroutines.
func FaceLock(family Families, size float32, fn func(f font.Face)) {
	faces.Lock()
	defer faces.Unlock()
	fn(faceLocked(family, size))
}
