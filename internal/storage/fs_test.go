package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quiverlib/internal/checksum"
)

func tempOutput(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempOutput(t)
	content := []byte("<h1>Hello</h1>\n")
	if err := s.Write("note.html", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempOutput(t)
	if err := s.Write(filepath.Join("nb", "note.html"), []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(filepath.Join("nb", "note.html"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempOutput(t)
	_ = s.Write("del.html", []byte("bye"))
	if err := s.Delete("del.html"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.html"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempOutput(t)
	_ = s.Write("a.html", []byte("a"))
	_ = s.Write(filepath.Join("sub", "b.html"), []byte("b"))
	_ = s.Write("readme.txt", []byte("not html"))
	// Leftover from an interrupted write.
	if err := os.WriteFile(filepath.Join(s.Root(), tempPrefix+"123"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := s.List("**/*.html")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %v, want 2", items)
	}
	if items[0] != "a.html" || items[1] != filepath.Join("sub", "b.html") {
		t.Errorf("items = %v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempOutput(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.html",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if err := s.Delete(p); err == nil {
			t.Errorf("expected error for delete of %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempOutput(t)
	_ = s.Write("atomic.html", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.html", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.html")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, tempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "html")
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(s.Root()); err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "quiver-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestChecksum(t *testing.T) {
	s := tempOutput(t)
	_ = s.Write("a.html", []byte("abc"))

	got, err := s.Checksum("a.html")
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if got != checksum.Sum([]byte("abc")) {
		t.Errorf("checksum = %q", got)
	}
	if _, err := s.Checksum("missing.html"); err == nil {
		t.Error("expected error for missing file")
	}
}
