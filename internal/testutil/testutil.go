// Package testutil provides shared test helpers for building Quiver libraries on disk.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Cell mirrors the on-disk shape of a content.json cell.
type Cell struct {
	Type        string `json:"type"`
	Data        string `json:"data"`
	Language    string `json:"language,omitempty"`
	DiagramType string `json:"diagramType,omitempty"`
}

// NoteMeta mirrors the on-disk shape of a note's meta.json.
type NoteMeta struct {
	UUID      string   `json:"uuid"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// WriteJSON marshals v into path, creating parent directories.
func WriteJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	WriteFile(t, path, data)
}

// WriteFile writes raw bytes into path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestLibrary creates a temporary <id>.qvlibrary whose metadata declares the
// given children. No notebook directories are created.
func TestLibrary(t *testing.T, id string, children ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), id+".qvlibrary")
	kids := make([]map[string]string, len(children))
	for i, c := range children {
		kids[i] = map[string]string{"uuid": c}
	}
	WriteJSON(t, filepath.Join(dir, "meta.json"), map[string]any{
		"uuid":     id,
		"children": kids,
	})
	return dir
}

// AddNotebook creates <parent>/<id>.qvnotebook with the given name.
func AddNotebook(t *testing.T, parent, id, name string) string {
	t.Helper()
	dir := filepath.Join(parent, id+".qvnotebook")
	WriteJSON(t, filepath.Join(dir, "meta.json"), map[string]string{
		"uuid": id,
		"name": name,
	})
	return dir
}

// AddNote creates <parent>/<meta.UUID>.qvnote with metadata and content.
func AddNote(t *testing.T, parent string, meta NoteMeta, cells ...Cell) string {
	t.Helper()
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	if cells == nil {
		cells = []Cell{}
	}
	dir := filepath.Join(parent, meta.UUID+".qvnote")
	WriteJSON(t, filepath.Join(dir, "meta.json"), meta)
	WriteJSON(t, filepath.Join(dir, "content.json"), map[string]any{
		"title": meta.Title,
		"cells": cells,
	})
	return dir
}
