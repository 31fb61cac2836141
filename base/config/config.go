// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads and writes settings structs from TOML and YAML
// files, applying `default:` struct tags first.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/inkframe/inkframe/base/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SetFromDefaults sets the values of the given config object
// from `default:` struct field tag values. Errors are automatically
// logged in addition to being returned.
func SetFromDefaults(cfg any) error {
	return errors.Log(defaults.Set(cfg))
}

// Format is a config file encoding.
type Format int

const (
	// TOML is the default format.
	TOML Format = iota
	YAML
)

// FormatOf returns the format for the given filename, by extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return TOML, fmt.Errorf("config: unrecognized file extension for %q", filename)
}

// Open sets the defaults of cfg, then reads the given file over them.
// A leading ~ in filename is expanded to the home directory.
func Open(cfg any, filename string) error {
	if err := SetFromDefaults(cfg); err != nil {
		return err
	}
	fn, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	f, err := FormatOf(fn)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	return Read(cfg, b, f)
}

// Read decodes b in the given format into cfg. Fields absent from b
// keep their current values.
func Read(cfg any, b []byte, f Format) error {
	var err error
	switch f {
	case YAML:
		err = yaml.Unmarshal(b, cfg)
	default:
		err = toml.NewDecoder(bytes.NewReader(b)).Decode(cfg)
	}
	if err != nil {
		return fmt.Errorf("config: decoding: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the given format.
func Marshal(cfg any, f Format) ([]byte, error) {
	if f == YAML {
		return yaml.Marshal(cfg)
	}
	return toml.Marshal(cfg)
}

// Save writes cfg to the given file, in the format of its extension.
func Save(cfg any, filename string) error {
	fn, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	f, err := FormatOf(fn)
	if err != nil {
		return err
	}
	b, err := Marshal(cfg, f)
	if err != nil {
		return err
	}
	return os.WriteFile(fn, b, 0o644)
}
