// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package paint renders overlay widgets to an [image.RGBA].

A [Painter] draws in logical units: it carries an offset and scale
from logical coordinates to pixels, and a clip rectangle, so that
a widget renders the same way onscreen inside the root and offscreen
when it is captured at a different scale. Text uses the Go fonts.
*/
package paint
