package internal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"

	"github.com/starford/quiverlib/internal/apperr"
	"github.com/starford/quiverlib/internal/checksum"
	"github.com/starford/quiverlib/internal/index"
	"github.com/starford/quiverlib/internal/quiver"
	"github.com/starford/quiverlib/internal/render"
	"github.com/starford/quiverlib/internal/storage"
)

// notebookFilter turns a --match glob into an index.Filter on notebook names.
// An empty pattern selects every notebook and yields a nil filter.
func notebookFilter(match string) (index.Filter, error) {
	if match == "" {
		return nil, nil
	}
	if !doublestar.ValidatePattern(match) {
		return nil, fmt.Errorf("invalid match pattern %q: %w", match, doublestar.ErrBadPattern)
	}
	return func(nb *quiver.Notebook) bool {
		ok, _ := doublestar.Match(match, nb.Name())
		return ok
	}, nil
}

// notebooks returns the notebooks selected by filter. With no filter the
// whole library is preloaded first so note content is read concurrently.
func (a *App) notebooks(ctx context.Context, filter index.Filter) ([]*quiver.Notebook, error) {
	if filter == nil {
		if err := quiver.Preload(ctx, a.lib, a.cfg.Library.PreloadWorkers); err != nil {
			return nil, err
		}
	}
	all, err := a.lib.Notebooks()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return all, nil
	}
	var out []*quiver.Notebook
	for _, nb := range all {
		if filter(nb) {
			out = append(out, nb)
		}
	}
	return out, nil
}

// Tree prints the library, its notebooks and their notes. Declared and
// observed notebook counts are both shown.
func (a *App) Tree(_ context.Context, match string) error {
	filter, err := notebookFilter(match)
	if err != nil {
		return err
	}
	all, err := a.lib.Notebooks()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	fmt.Fprintf(a.out, "%s (%d notebooks declared, %d found) %s\n",
		bold.Sprint(a.lib.ID()), a.lib.NotebookCount(), len(all), faint.Sprint(a.lib.Path()))
	for _, nb := range all {
		if filter != nil && !filter(nb) {
			continue
		}
		notes, err := nb.Notes()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "  %s [%s] %d notes\n", bold.Sprint(nb.Name()), nb.ID(), nb.NoteCount())
		for _, n := range notes {
			fmt.Fprintf(a.out, "    %s  %s\n", faint.Sprint(n.ID()), n.Title())
		}
	}
	return nil
}

// FindNote looks a note up by id across all notebooks. A unique
// case-insensitive prefix is accepted as well.
func (a *App) FindNote(id string) (*quiver.Notebook, *quiver.Note, error) {
	notebooks, err := a.lib.Notebooks()
	if err != nil {
		return nil, nil, err
	}

	type hit struct {
		nb   *quiver.Notebook
		note *quiver.Note
	}
	var hits []hit
	prefix := strings.ToLower(id)
	for _, nb := range notebooks {
		notes, err := nb.Notes()
		if err != nil {
			return nil, nil, err
		}
		for _, n := range notes {
			if n.ID() == id {
				return nb, n, nil
			}
			if id != "" && strings.HasPrefix(strings.ToLower(n.ID()), prefix) {
				hits = append(hits, hit{nb, n})
			}
		}
	}

	switch len(hits) {
	case 0:
		return nil, nil, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	case 1:
		return hits[0].nb, hits[0].note, nil
	default:
		return nil, nil, fmt.Errorf("note %q matches %d notes: %w", id, len(hits), apperr.ErrAmbiguous)
	}
}

// Show prints the metadata and sanitized cells of one note.
func (a *App) Show(_ context.Context, id string) error {
	nb, n, err := a.FindNote(id)
	if err != nil {
		return err
	}
	cells, err := n.Content()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", n.ID())
	fmt.Fprintf(tw, "title:\t%s\n", n.Title())
	fmt.Fprintf(tw, "notebook:\t%s [%s]\n", nb.Name(), nb.ID())
	fmt.Fprintf(tw, "tags:\t%s\n", strings.Join(n.Tags(), ", "))
	fmt.Fprintf(tw, "created:\t%s\n", n.CreatedAt())
	fmt.Fprintf(tw, "updated:\t%s\n", n.UpdatedAt())
	fmt.Fprintf(tw, "path:\t%s\n", n.Path())
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, c := range cells {
		kind := c.Type
		switch {
		case c.Language != "":
			kind += " (" + c.Language + ")"
		case c.DiagramType != "":
			kind += " (" + c.DiagramType + ")"
		}
		fmt.Fprintf(a.out, "\n%s\n%s\n", color.CyanString("--- cell %d: %s", i+1, kind), c.Data)
	}
	return nil
}

// Render writes one HTML page per note to outDir (the configured output
// directory when empty) as <notebook-id>/<note-id>.html. Without a match
// pattern, pages of notes no longer in the library are removed.
func (a *App) Render(ctx context.Context, outDir, match string) error {
	if outDir == "" {
		outDir = a.cfg.Render.OutputDir
	}
	filter, err := notebookFilter(match)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(outDir)
	if err != nil {
		return err
	}
	r, err := render.New(a.cfg.Render.Style)
	if err != nil {
		return err
	}
	notebooks, err := a.notebooks(ctx, filter)
	if err != nil {
		return err
	}

	written := make(map[string]struct{})
	unchanged := 0
	for _, nb := range notebooks {
		if err := ctx.Err(); err != nil {
			return err
		}
		notes, err := nb.Notes()
		if err != nil {
			return err
		}
		for _, n := range notes {
			page, err := r.Note(nb.Name(), n)
			if err != nil {
				return err
			}
			rel := pagePath(nb, n)
			written[rel] = struct{}{}
			if sum, err := store.Checksum(rel); err == nil && sum == checksum.Sum(page) {
				unchanged++
				continue
			}
			if err := store.Write(rel, page); err != nil {
				return err
			}
			a.logger.Debug("render: wrote page", slog.String("path", rel))
		}
	}

	removed := 0
	if filter == nil {
		existing, err := store.List("**/*.html")
		if err != nil {
			return err
		}
		for _, rel := range existing {
			if _, ok := written[rel]; ok {
				continue
			}
			if err := store.Delete(rel); err != nil {
				return err
			}
			removed++
		}
	}

	a.logger.Info("render: finished",
		slog.String("output_dir", store.Root()),
		slog.Int("pages", len(written)),
		slog.Int("unchanged", unchanged),
		slog.Int("removed", removed))
	fmt.Fprintf(a.out, "rendered %d notes to %s (%d unchanged, %d stale pages removed)\n",
		len(written), store.Root(), unchanged, removed)
	return nil
}

func pagePath(nb *quiver.Notebook, n *quiver.Note) string {
	return filepath.Join(nb.ID(), n.ID()+".html")
}

// Export brings the SQLite index at cfg.Index.Path up to date with the library.
func (a *App) Export(ctx context.Context, match string) (*index.ExportRun, error) {
	filter, err := notebookFilter(match)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		if err := quiver.Preload(ctx, a.lib, a.cfg.Library.PreloadWorkers); err != nil {
			return nil, err
		}
	}

	db, err := index.Open(a.cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	run, err := index.Export(ctx, db, a.lib, filter, a.logger)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "export %s: %d notebooks, %d notes indexed, %d unchanged, %d removed\n",
		run.ID, run.Notebooks, run.Indexed, run.Skipped, run.Removed)
	return run, nil
}

// Search queries the SQLite index and prints one line per hit.
func (a *App) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	db, err := index.Open(a.cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	results, err := db.Search(query, limit)
	if err != nil {
		return nil, err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, r := range results {
		snippet := strings.Join(strings.Fields(r.Snippet), " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.NoteID, r.NotebookID, r.Title, snippet)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return results, nil
}
