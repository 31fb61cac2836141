// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkframe/inkframe/base/config"
	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/overlay"
	"github.com/oklog/ulid/v2"
)

// descriptorFile is the layout of a resource file.
type descriptorFile struct {
	Resources []document.Descriptor `json:"resources" toml:"resources" yaml:"resources"`
}

// ReadDescriptors reads resource descriptors from a JSON, TOML or YAML
// file. JSON files may hold a bare array. Resources without an id are
// given a new ULID.
func ReadDescriptors(filename string) ([]document.Descriptor, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var df descriptorFile
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		if bytes.HasPrefix(bytes.TrimSpace(b), []byte("[")) {
			err = json.Unmarshal(b, &df.Resources)
		} else {
			err = json.Unmarshal(b, &df)
		}
	} else {
		var f config.Format
		f, err = config.FormatOf(filename)
		if err == nil {
			err = config.Read(&df, b, f)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("reading resources from %q: %w", filename, err)
	}
	for i := range df.Resources {
		if df.Resources[i].ID == "" {
			df.Resources[i].ID = ulid.Make().String()
		}
	}
	return df.Resources, nil
}

// Create adds placeholders for the resources in descFile to the
// document snapshot at output, creating it if it does not exist.
// Resources whose id is already in the document are skipped.
// It returns the number of placeholders added.
func Create(c *Config, descFile, output string) (int, error) {
	descs, err := ReadDescriptors(descFile)
	if err != nil {
		return 0, err
	}
	doc := document.NewMemory()
	if _, err := os.Stat(output); err == nil {
		s, err := document.OpenSnapshot(output)
		if err != nil {
			return 0, err
		}
		doc.Restore(s)
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	fresh := descs[:0]
	for _, d := range descs {
		if _, ok := doc.Element(d.ID); ok {
			c.logger().Warn("resource already in document", "id", d.ID)
			continue
		}
		fresh = append(fresh, d)
	}
	ctrl := overlay.New(doc, overlay.WithSettings(c.Settings), overlay.WithLogger(c.logger()))
	defer ctrl.Close()
	els := ctrl.BatchCreate(fresh)
	doc.AddElements(els...)
	if err := doc.Snapshot("inkframe").Save(output); err != nil {
		return 0, err
	}
	c.logger().Info("created placeholders", "count", len(els), "skipped", len(descs)-len(els), "output", output)
	return len(els), nil
}
