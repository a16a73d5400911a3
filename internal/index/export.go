package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quiverlib/internal/checksum"
	"github.com/starford/quiverlib/internal/parser"
	"github.com/starford/quiverlib/internal/quiver"
)

// Filter selects the notebooks an export visits. A nil Filter visits all of them.
type Filter func(nb *quiver.Notebook) bool

// Export walks the library and brings the index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the index
//   - when no filter is set, notebooks removed from disk are deleted too
//
// Notes outside the filtered notebooks are left untouched. Loader errors abort
// the export; nothing is recorded for an aborted run.
func Export(ctx context.Context, db NoteIndex, lib *quiver.Library, filter Filter, logger *slog.Logger) (*ExportRun, error) {
	if logger == nil {
		logger = slog.Default()
	}
	run := ExportRun{
		ID:        uuid.NewString(),
		LibraryID: lib.ID(),
		StartedAt: time.Now().UTC(),
	}

	notebooks, err := lib.Notebooks()
	if err != nil {
		return nil, fmt.Errorf("index: export: %w", err)
	}
	existing, err := db.AllChecksums()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	visited := make(map[string]struct{})
	for _, nb := range notebooks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if filter != nil && !filter(nb) {
			continue
		}
		visited[nb.ID()] = struct{}{}
		run.Notebooks++

		notes, err := nb.Notes()
		if err != nil {
			return nil, fmt.Errorf("index: export: %w", err)
		}
		err = db.UpsertNotebook(NotebookRow{
			ID:        nb.ID(),
			Name:      nb.Name(),
			Path:      nb.Path(),
			NoteCount: len(notes),
		})
		if err != nil {
			return nil, err
		}

		for _, n := range notes {
			seen[n.ID()] = struct{}{}
			indexed, err := exportNote(db, nb, n, existing[n.ID()])
			if err != nil {
				return nil, err
			}
			if !indexed {
				run.Skipped++
				continue
			}
			run.Indexed++
			logger.Debug("index: exported note", slog.String("id", n.ID()), slog.String("notebook", nb.ID()))
		}
	}

	// Remove stale entries.
	for id, st := range existing {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := visited[st.NotebookID]; !ok && filter != nil {
			continue
		}
		if err := db.DeleteNote(id); err != nil {
			return nil, err
		}
		run.Removed++
		logger.Debug("index: removed stale note", slog.String("id", id))
	}
	if filter == nil {
		ids, err := db.NotebookIDs()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := visited[id]; ok {
				continue
			}
			if err := db.DeleteNotebook(id); err != nil {
				return nil, err
			}
			logger.Debug("index: removed stale notebook", slog.String("id", id))
		}
	}

	run.FinishedAt = time.Now().UTC()
	if err := db.RecordExport(run); err != nil {
		return nil, err
	}
	logger.Info("index: export finished",
		slog.String("run", run.ID),
		slog.Int("notebooks", run.Notebooks),
		slog.Int("indexed", run.Indexed),
		slog.Int("skipped", run.Skipped),
		slog.Int("removed", run.Removed))
	return &run, nil
}

// exportNote upserts n unless prev shows it is already indexed unchanged.
func exportNote(db NoteIndex, nb *quiver.Notebook, n *quiver.Note, prev NoteState) (bool, error) {
	cells, err := n.Content()
	if err != nil {
		return false, fmt.Errorf("index: export: %w", err)
	}
	cs := NoteChecksum(nb.ID(), n, cells)
	if prev.Checksum == cs && prev.NotebookID == nb.ID() {
		return false, nil
	}

	res := parser.Parse(n.ResourcesDir(), cells)
	row := NoteRow{
		ID:         n.ID(),
		NotebookID: nb.ID(),
		Title:      n.Title(),
		Tags:       n.Tags(),
		CreatedAt:  n.CreatedAt(),
		UpdatedAt:  n.UpdatedAt(),
		Path:       n.Path(),
		Checksum:   cs,
	}
	if err := db.UpsertNote(row, res.Body, cells, res.Resources); err != nil {
		return false, err
	}
	return true, nil
}

// NoteChecksum digests the metadata and sanitized cells of a note.
func NoteChecksum(notebookID string, n *quiver.Note, cells []quiver.Cell) string {
	fields := []string{
		notebookID,
		n.ID(),
		n.Title(),
		strings.Join(n.Tags(), "\x00"),
		n.CreatedAt(),
		n.UpdatedAt(),
	}
	for _, c := range cells {
		fields = append(fields, c.Type, c.Language, c.DiagramType, c.Data)
	}
	return checksum.Fields(fields...)
}
