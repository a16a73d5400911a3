package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/quiverlib/internal/apperr"
	"github.com/starford/quiverlib/internal/quiver"
)

// NotebookRow represents a row in the notebooks table.
type NotebookRow struct {
	ID        string
	Name      string
	Path      string
	NoteCount int
}

// NoteRow represents a row in the notes table.
type NoteRow struct {
	ID         string
	NotebookID string
	Title      string
	Tags       []string
	CreatedAt  string
	UpdatedAt  string
	Path       string
	Checksum   string
}

// NoteState is what an export needs to know about a note already indexed.
type NoteState struct {
	NotebookID string
	Checksum   string
}

// SearchResult represents one search hit.
type SearchResult struct {
	NoteID     string
	Title      string
	NotebookID string
	Snippet    string
}

// ExportRun records one pass of Export.
type ExportRun struct {
	ID         string
	LibraryID  string
	StartedAt  time.Time
	FinishedAt time.Time
	Notebooks  int
	Indexed    int
	Skipped    int
	Removed    int
}

// UpsertNotebook inserts or replaces a notebook row.
func (db *DB) UpsertNotebook(nb NotebookRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO notebooks (id, name, path, note_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			path       = excluded.path,
			note_count = excluded.note_count
	`, nb.ID, nb.Name, nb.Path, nb.NoteCount)
	if err != nil {
		return fmt.Errorf("index: upsert notebook: %w", err)
	}
	return nil
}

// DeleteNotebook removes a notebook and every note filed under it.
func (db *DB) DeleteNotebook(id string) error {
	rows, err := db.conn.Query(`SELECT id FROM notes WHERE notebook_id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: notebook notes: %w", err)
	}
	var ids []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, n := range ids {
		if err := db.DeleteNote(n); err != nil {
			return err
		}
	}
	if _, err := db.conn.Exec(`DELETE FROM notebooks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete notebook: %w", err)
	}
	return nil
}

// NotebookIDs returns the ids of every indexed notebook.
func (db *DB) NotebookIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT id FROM notebooks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("index: notebook ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpsertNote inserts or replaces a note, its cells, resources and FTS entry
// within a transaction.
func (db *DB) UpsertNote(n NoteRow, body string, cells []quiver.Cell, resources []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO notes (id, notebook_id, title, tags, created_at, updated_at, path, checksum, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			notebook_id = excluded.notebook_id,
			title       = excluded.title,
			tags        = excluded.tags,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at,
			path        = excluded.path,
			checksum    = excluded.checksum,
			body        = excluded.body
	`, n.ID, n.NotebookID, n.Title, string(tagsJSON), n.CreatedAt, n.UpdatedAt, n.Path, n.Checksum, body)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, n.ID, n.NotebookID, n.Title, body, tags); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM cells WHERE note_id = ?`, n.ID); err != nil {
		return fmt.Errorf("index: clear cells: %w", err)
	}
	if len(cells) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO cells (note_id, position, type, language, diagram_type, data) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare cell insert: %w", err)
		}
		defer stmt.Close()
		for i, c := range cells {
			if _, err := stmt.Exec(n.ID, i, c.Type, c.Language, c.DiagramType, c.Data); err != nil {
				return fmt.Errorf("index: insert cell: %w", err)
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM resources WHERE note_id = ?`, n.ID); err != nil {
		return fmt.Errorf("index: clear resources: %w", err)
	}
	if len(resources) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO resources (note_id, path) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare resource insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range resources {
			if _, err := stmt.Exec(n.ID, p); err != nil {
				return fmt.Errorf("index: insert resource: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note with its cells, resources and FTS entry.
func (db *DB) DeleteNote(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cells WHERE note_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete cells: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM resources WHERE note_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete resources: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return tx.Commit()
}

// GetNote returns the indexed note with the given id or apperr.ErrNotFound.
func (db *DB) GetNote(id string) (*NoteRow, error) {
	var (
		n        NoteRow
		tagsJSON string
	)
	err := db.conn.QueryRow(`
		SELECT id, notebook_id, title, tags, created_at, updated_at, path, checksum
		FROM notes WHERE id = ?
	`, id).Scan(&n.ID, &n.NotebookID, &n.Title, &tagsJSON, &n.CreatedAt, &n.UpdatedAt, &n.Path, &n.Checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: note %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return nil, fmt.Errorf("index: decode tags of %s: %w", id, err)
	}
	return &n, nil
}

// Cells returns the stored cells of a note in their original order.
func (db *DB) Cells(noteID string) ([]quiver.Cell, error) {
	rows, err := db.conn.Query(`
		SELECT type, language, diagram_type, data
		FROM cells WHERE note_id = ?
		ORDER BY position
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("index: cells: %w", err)
	}
	defer rows.Close()

	var out []quiver.Cell
	for rows.Next() {
		var c quiver.Cell
		if err := rows.Scan(&c.Type, &c.Language, &c.DiagramType, &c.Data); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Resources returns the resource paths referenced by a note.
func (db *DB) Resources(noteID string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM resources WHERE note_id = ? ORDER BY rowid`, noteID)
	if err != nil {
		return nil, fmt.Errorf("index: resources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllChecksums returns the notebook and checksum of every indexed note keyed by id.
func (db *DB) AllChecksums() (map[string]NoteState, error) {
	rows, err := db.conn.Query(`SELECT id, notebook_id, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]NoteState)
	for rows.Next() {
		var (
			id string
			st NoteState
		)
		if err := rows.Scan(&id, &st.NotebookID, &st.Checksum); err != nil {
			return nil, err
		}
		out[id] = st
	}
	return out, rows.Err()
}

// RecordExport stores the summary of an export run.
func (db *DB) RecordExport(run ExportRun) error {
	_, err := db.conn.Exec(`
		INSERT INTO exports (id, library_id, started_at, finished_at, notebooks, indexed, skipped, removed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.LibraryID, run.StartedAt, run.FinishedAt, run.Notebooks, run.Indexed, run.Skipped, run.Removed)
	if err != nil {
		return fmt.Errorf("index: record export: %w", err)
	}
	return nil
}

// LastExport returns the most recent export run or apperr.ErrNotFound.
func (db *DB) LastExport() (*ExportRun, error) {
	var run ExportRun
	err := db.conn.QueryRow(`
		SELECT id, library_id, started_at, finished_at, notebooks, indexed, skipped, removed
		FROM exports
		ORDER BY finished_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&run.ID, &run.LibraryID, &run.StartedAt, &run.FinishedAt,
		&run.Notebooks, &run.Indexed, &run.Skipped, &run.Removed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: last export: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: last export: %w", err)
	}
	return &run, nil
}
