// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SnapshotType is the type field of saved documents.
const SnapshotType = "excalidraw"

// Snapshot is a saved document, in the scene file format.
type Snapshot struct {
	Type     string    `json:"type"`
	Version  int       `json:"version"`
	Source   string    `json:"source"`
	Elements []Element `json:"elements"`
	AppState AppState  `json:"appState"`
}

// AppState is the saved view state of a document.
type AppState struct {
	ScrollX     float32         `json:"scrollX"`
	ScrollY     float32         `json:"scrollY"`
	Zoom        Zoom            `json:"zoom"`
	SelectedIDs map[string]bool `json:"selectedElementIds,omitempty"`
}

// Zoom is the saved zoom value.
type Zoom struct {
	Value float32 `json:"value"`
}

// NewSnapshot returns an empty snapshot with the given source.
func NewSnapshot(source string) *Snapshot {
	return &Snapshot{Type: SnapshotType, Version: 2, Source: source, Elements: []Element{}, AppState: AppState{Zoom: Zoom{Value: 1}}}
}

// Viewport returns the view transform of the snapshot.
func (s *Snapshot) Viewport() Viewport {
	return Viewport{Zoom: s.AppState.Zoom.Value, ScrollX: s.AppState.ScrollX, ScrollY: s.AppState.ScrollY}
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("document: reading snapshot: %w", err)
	}
	if s.Type != "" && s.Type != SnapshotType {
		return nil, fmt.Errorf("document: unexpected snapshot type %q", s.Type)
	}
	return s, nil
}

// Write encodes the snapshot to w as indented JSON.
func (s *Snapshot) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// OpenSnapshot reads a snapshot from the given file.
func OpenSnapshot(filename string) (*Snapshot, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(bufio.NewReader(f))
}

// Save writes the snapshot to the given file.
func (s *Snapshot) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := s.Write(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// Snapshot returns a snapshot of the document with the given source.
func (m *Memory) Snapshot(source string) *Snapshot {
	s := NewSnapshot(source)
	s.Elements = m.Elements()
	vp := m.Viewport()
	s.AppState.ScrollX, s.AppState.ScrollY, s.AppState.Zoom.Value = vp.ScrollX, vp.ScrollY, vp.Zoom
	s.AppState.SelectedIDs = m.Selection()
	return s
}

// Restore replaces the document contents with those of the snapshot.
func (m *Memory) Restore(s *Snapshot) {
	m.SetElements(s.Elements)
	m.SetViewport(s.Viewport())
	m.SetSelection(Selection(s.AppState.SelectedIDs).IDs()...)
}
