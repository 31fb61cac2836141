// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/base/iox/imagex"
	"github.com/mitchellh/go-homedir"
)

// Loader loads the bytes of a resource URL.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// LoaderFunc is a function that implements [Loader].
type LoaderFunc func(ctx context.Context, url string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// FileLoader is a [Loader] for data URIs, file URLs, and local paths.
// Other URLs must be handled by a host-provided loader.
type FileLoader struct {

	// MaxSize is the maximum number of bytes in a resource; 0 means no limit.
	// Larger resources fail with [ErrTooLarge].
	MaxSize int64
}

// ErrTooLarge is returned by [FileLoader] for resources over its MaxSize.
var ErrTooLarge = errors.New("widget.FileLoader: resource exceeds MaxSize")

func (fl FileLoader) Load(ctx context.Context, u string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(u, "data:") {
		_, data, err := imagex.DecodeDataURI(u)
		return data, err
	}
	path := u
	if strings.Contains(u, "://") {
		pu, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		if pu.Scheme != "file" {
			return nil, fmt.Errorf("widget.FileLoader: unsupported URL scheme %q", pu.Scheme)
		}
		path = pu.Path
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if fl.MaxSize <= 0 {
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(io.LimitReader(f, fl.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > fl.MaxSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, path)
	}
	return data, nil
}

// DecodeImage sniffs the data to check that it is an image
// and decodes it to an [image.RGBA], which draws fastest.
func DecodeImage(data []byte) (image.Image, imagex.Formats, error) {
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, imagex.None, fmt.Errorf("widget: data is not an image (detected %q)", kind.MIME.Value)
	}
	img, f, err := imagex.Read(bytes.NewReader(data))
	if err != nil {
		return nil, f, err
	}
	return imagex.AsRGBA(img), f, nil
}
