package quiver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNoteMeta_TimestampsAsNumberOrString(t *testing.T) {
	dir := t.TempDir()
	body := `{"uuid":"a","title":"t","tags":[],"created_at":1403566023,"updated_at":"1443042305","ignored":true}`
	if err := os.WriteFile(filepath.Join(dir, metaFileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var m noteMeta
	if err := decodeMetadata(JSONCodec{}, dir, &m); err != nil {
		t.Fatalf("decodeMetadata: %v", err)
	}
	if m.CreatedAt != "1403566023" {
		t.Errorf("created_at = %q, want %q", m.CreatedAt, "1403566023")
	}
	if m.UpdatedAt != "1443042305" {
		t.Errorf("updated_at = %q, want %q", m.UpdatedAt, "1443042305")
	}
}

func TestNoteMeta_TimestampWrongType(t *testing.T) {
	dir := t.TempDir()
	body := `{"uuid":"a","created_at":true}`
	if err := os.WriteFile(filepath.Join(dir, metaFileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	var m noteMeta
	err := decodeMetadata(JSONCodec{}, dir, &m)
	var mme *MalformedMetadataError
	if !errors.As(err, &mme) {
		t.Fatalf("err = %v, want *MalformedMetadataError", err)
	}
}

func TestDecodeMetadata_MissingFile(t *testing.T) {
	dir := t.TempDir()
	var m notebookMeta
	err := decodeMetadata(JSONCodec{}, dir, &m)

	var mme *MalformedMetadataError
	if !errors.As(err, &mme) {
		t.Fatalf("err = %v, want *MalformedMetadataError", err)
	}
	if mme.Path != filepath.Join(dir, metaFileName) {
		t.Errorf("path = %q", mme.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should be os.ErrNotExist, got %v", mme.Err)
	}
}

func TestDecodeContent_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, contentFileName), []byte(`{"cells": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := decodeContent(JSONCodec{}, dir)
	if c != nil {
		t.Errorf("expected no partial content, got %+v", c)
	}
	var mce *MalformedContentError
	if !errors.As(err, &mce) {
		t.Fatalf("err = %v, want *MalformedContentError", err)
	}
	if mce.Path != filepath.Join(dir, contentFileName) {
		t.Errorf("path = %q", mce.Path)
	}
}

func TestLazy_RetriesAfterFailure(t *testing.T) {
	var l lazy[int]
	calls := 0
	fail := errors.New("boom")

	if _, err := l.get(func() (int, error) { calls++; return 0, fail }); !errors.Is(err, fail) {
		t.Fatalf("err = %v, want %v", err, fail)
	}
	if l.isLoaded() {
		t.Fatal("failed load must leave the value unloaded")
	}
	v, err := l.get(func() (int, error) { calls++; return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("get = %d, %v", v, err)
	}
	v, _ = l.get(func() (int, error) { calls++; return 9, nil })
	if v != 7 {
		t.Errorf("value = %d, want memoized 7", v)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
