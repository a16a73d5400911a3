package quiver_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/starford/quiverlib/internal/quiver"
	"github.com/starford/quiverlib/internal/quiver/mocks"
	"github.com/starford/quiverlib/internal/testutil"
)

const gettingStartedID = "D2A1CC36-CC97-4701-A895-EFC98EF47026"

func fixture(t *testing.T, elem ...string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join(append([]string{"testdata"}, elem...)...))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func gettingStartedPath(t *testing.T) string {
	return fixture(t, "library.qvlibrary", "Tutorial.qvnotebook", gettingStartedID+".qvnote")
}

func newMockCodec(t *testing.T) *mocks.MockCodec {
	t.Helper()
	ctrl := gomock.NewController(t)
	return mocks.NewMockCodec(ctrl)
}

func TestOpenNote_MetadataLoaded(t *testing.T) {
	note, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatalf("OpenNote: %v", err)
	}
	if note.ID() != gettingStartedID {
		t.Errorf("id = %q", note.ID())
	}
	if note.Title() != "1 - Getting Started" {
		t.Errorf("title = %q", note.Title())
	}
	if !slices.Equal(note.Tags(), []string{"tutorial"}) {
		t.Errorf("tags = %v, want [tutorial]", note.Tags())
	}
	if note.CreatedAt() != "1403566023" {
		t.Errorf("created_at = %q, want %q", note.CreatedAt(), "1403566023")
	}
	if note.UpdatedAt() != "1443042305" {
		t.Errorf("updated_at = %q, want %q", note.UpdatedAt(), "1443042305")
	}
	if note.ContentLoaded() {
		t.Error("content must not be loaded by OpenNote")
	}
}

func TestOpenNote_Deterministic(t *testing.T) {
	a, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatal(err)
	}
	b, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() != b.ID() || a.Title() != b.Title() || a.CreatedAt() != b.CreatedAt() ||
		a.UpdatedAt() != b.UpdatedAt() || !slices.Equal(a.Tags(), b.Tags()) {
		t.Errorf("two loads differ: %+v vs %+v", a, b)
	}
}

func TestOpenNote_InvalidMetadata(t *testing.T) {
	note, err := quiver.OpenNote(fixture(t, "invalid-meta.qvnote"))
	if note != nil {
		t.Error("expected no note on failure")
	}
	var mme *quiver.MalformedMetadataError
	if !errors.As(err, &mme) {
		t.Fatalf("err = %v, want *MalformedMetadataError", err)
	}
	if filepath.Base(mme.Path) != "meta.json" {
		t.Errorf("path = %q", mme.Path)
	}
}

func TestNote_ContentLoadedOnce(t *testing.T) {
	dir := gettingStartedPath(t)
	codec := newMockCodec(t)
	jsonCodec := quiver.JSONCodec{}
	codec.EXPECT().Decode(filepath.Join(dir, "meta.json"), gomock.Any()).DoAndReturn(jsonCodec.Decode).Times(1)
	codec.EXPECT().Decode(filepath.Join(dir, "content.json"), gomock.Any()).DoAndReturn(jsonCodec.Decode).Times(1)

	note, err := quiver.OpenNote(dir, quiver.WithCodec(codec))
	if err != nil {
		t.Fatalf("OpenNote: %v", err)
	}
	content, err := note.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	again, err := note.Content()
	if err != nil {
		t.Fatalf("Content (cached): %v", err)
	}

	if len(content) != 5 {
		t.Fatalf("len(content) = %d, want 5", len(content))
	}
	if !slices.Equal(content, again) {
		t.Error("second call should return the same cells")
	}
	if content[0].Type != quiver.CellText {
		t.Errorf("cell 0 type = %q", content[0].Type)
	}
	if content[0].Data != "Welcome to Quiver!" {
		t.Errorf("cell 0 data = %q", content[0].Data)
	}
	if content[1].Language != "javascript" {
		t.Errorf("cell 1 language = %q", content[1].Language)
	}
	if content[3].DiagramType != "sequence" {
		t.Errorf("cell 3 diagramType = %q", content[3].DiagramType)
	}
}

func TestNote_ContentSanitized(t *testing.T) {
	note, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatal(err)
	}
	content, err := note.Content()
	if err != nil {
		t.Fatal(err)
	}
	data := content[4].Data
	if strings.Contains(data, quiver.ResourceMarker) {
		t.Errorf("marker not sanitized: %q", data)
	}
	if !strings.Contains(data, note.ResourcesDir()) {
		t.Errorf("data %q should reference %q", data, note.ResourcesDir())
	}
	if !filepath.IsAbs(note.ResourcesDir()) {
		t.Errorf("resources dir %q should be absolute", note.ResourcesDir())
	}
}

func TestNote_InvalidContent(t *testing.T) {
	note, err := quiver.OpenNote(fixture(t, "invalid-content.qvnote"))
	if err != nil {
		t.Fatalf("metadata should be valid: %v", err)
	}
	cells, err := note.Content()
	if cells != nil {
		t.Errorf("expected no cells, got %v", cells)
	}
	var mce *quiver.MalformedContentError
	if !errors.As(err, &mce) {
		t.Fatalf("err = %v, want *MalformedContentError", err)
	}
}

func TestNote_ContentRetryAfterFix(t *testing.T) {
	nb := t.TempDir()
	dir := testutil.AddNote(t, nb, testutil.NoteMeta{UUID: "retry", Title: "Retry", CreatedAt: "1", UpdatedAt: "2"},
		testutil.Cell{Type: "text", Data: "fixed"})
	contentPath := filepath.Join(dir, "content.json")
	good, err := os.ReadFile(contentPath)
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, contentPath, []byte("not json"))

	note, err := quiver.OpenNote(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := note.Content(); err == nil {
		t.Fatal("expected error for broken content")
	}
	if note.ContentLoaded() {
		t.Fatal("failed load must not be cached")
	}

	testutil.WriteFile(t, contentPath, good)
	cells, err := note.Content()
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(cells) != 1 || cells[0].Data != "fixed" {
		t.Errorf("cells = %+v", cells)
	}
}

func TestNote_Times(t *testing.T) {
	note, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatal(err)
	}
	created, err := note.CreatedTime()
	if err != nil {
		t.Fatal(err)
	}
	if !created.Equal(time.Unix(1403566023, 0)) {
		t.Errorf("created = %v", created)
	}

	bad, err := quiver.OpenNote(testutil.AddNote(t, t.TempDir(), testutil.NoteMeta{UUID: "b", CreatedAt: "yesterday"}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bad.CreatedTime(); err == nil {
		t.Error("expected parse error for non-numeric timestamp")
	}
}

func TestNote_TagsReturnsCopy(t *testing.T) {
	note, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatal(err)
	}
	tags := note.Tags()
	tags[0] = "changed"
	if note.Tags()[0] != "tutorial" {
		t.Error("Tags must not expose internal state")
	}
}

func TestNote_ContentReturnsCopy(t *testing.T) {
	note, err := quiver.OpenNote(gettingStartedPath(t))
	if err != nil {
		t.Fatal(err)
	}
	cells, err := note.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	cells[0].Data = "changed"

	again, err := note.Content()
	if err != nil {
		t.Fatalf("Content (cached): %v", err)
	}
	if again[0].Data != "Welcome to Quiver!" {
		t.Errorf("cell 0 data = %q, Content must not expose internal state", again[0].Data)
	}
}
