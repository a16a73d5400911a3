package quiver

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// Note is a single Quiver document: metadata plus an ordered list of cells.
//
// Metadata is read when the note is opened; cells are read and sanitized on
// the first call to Content.
type Note struct {
	path      string
	id        string
	title     string
	tags      []string
	createdAt string
	updatedAt string

	content lazy[[]Cell]
	loader  *loader
}

// OpenNote reads the metadata of the .qvnote directory at path.
func OpenNote(path string, opts ...Option) (*Note, error) {
	return openNote(absPath(path), newLoader(opts))
}

func openNote(path string, l *loader) (*Note, error) {
	var m noteMeta
	if err := decodeMetadata(l.codec, path, &m); err != nil {
		return nil, err
	}
	return &Note{
		path:      path,
		id:        m.UUID,
		title:     m.Title,
		tags:      m.Tags,
		createdAt: string(m.CreatedAt),
		updatedAt: string(m.UpdatedAt),
		loader:    l,
	}, nil
}

// ID returns the note's unique identifier.
func (n *Note) ID() string { return n.id }

// Title returns the note's title.
func (n *Note) Title() string { return n.title }

// Tags returns a copy of the note's tags in declared order.
func (n *Note) Tags() []string { return slices.Clone(n.tags) }

// CreatedAt returns the creation time in seconds since the Unix epoch, as stored.
func (n *Note) CreatedAt() string { return n.createdAt }

// UpdatedAt returns the last update time in seconds since the Unix epoch, as stored.
func (n *Note) UpdatedAt() string { return n.updatedAt }

// CreatedTime parses CreatedAt.
func (n *Note) CreatedTime() (time.Time, error) { return parseEpoch(n.createdAt) }

// UpdatedTime parses UpdatedAt.
func (n *Note) UpdatedTime() (time.Time, error) { return parseEpoch(n.updatedAt) }

// Path returns the absolute path of the .qvnote directory.
func (n *Note) Path() string { return n.path }

// ResourcesDir returns the directory that sanitized cells point to.
func (n *Note) ResourcesDir() string { return filepath.Join(n.path, resourcesDirName) }

// Content returns a copy of the sanitized cells of the note, loading them on
// first use.
func (n *Note) Content() ([]Cell, error) {
	cells, err := n.content.get(func() ([]Cell, error) {
		c, err := decodeContent(n.loader.codec, n.path)
		if err != nil {
			return nil, err
		}
		cells := sanitizeCells(n.path, c.Cells)
		n.loader.logger.Debug("quiver: note content loaded",
			slog.String("note", n.id),
			slog.Int("cells", len(cells)))
		return cells, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(cells), nil
}

// ContentLoaded reports whether Content has already been materialized.
func (n *Note) ContentLoaded() bool { return n.content.isLoaded() }

func parseEpoch(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("quiver: invalid epoch timestamp %q: %w", s, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}
