package index

import "github.com/starford/quiverlib/internal/quiver"

// NoteIndex defines the operations the application needs from the export
// database. Consumers should depend on this interface rather than *DB.
type NoteIndex interface {
	UpsertNotebook(nb NotebookRow) error
	UpsertNote(n NoteRow, body string, cells []quiver.Cell, resources []string) error
	DeleteNote(id string) error
	DeleteNotebook(id string) error
	GetNote(id string) (*NoteRow, error)
	Cells(noteID string) ([]quiver.Cell, error)
	Resources(noteID string) ([]string, error)
	AllChecksums() (map[string]NoteState, error)
	NotebookIDs() ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	RecordExport(run ExportRun) error
	LastExport() (*ExportRun, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
