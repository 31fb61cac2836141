// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/inkframe/inkframe/base/errors"
)

// ToDataURI encodes the image in the given format and returns it
// as a base64 data URI, such as "data:image/png;base64,iVBOR...".
func ToDataURI(im image.Image, f Formats) (string, error) {
	if f == None {
		return "", errors.New("imagex.ToDataURI: no format given")
	}
	var buf bytes.Buffer
	if err := Write(im, &buf, f); err != nil {
		return "", err
	}
	return EncodeDataURI(f.MIME(), buf.Bytes()), nil
}

// EncodeDataURI returns a base64 data URI for the given media type and data.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its media type and data.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("imagex.DecodeDataURI: missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("imagex.DecodeDataURI: missing payload")
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("imagex.DecodeDataURI: only base64 data URIs are supported")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	return mime, data, err
}

// FromDataURI decodes an image from a base64 data URI.
func FromDataURI(uri string) (image.Image, Formats, error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, None, err
	}
	return Read(bytes.NewReader(data))
}
