package quiver

import "log/slog"

// Notebook is a named collection of notes.
type Notebook struct {
	path      string
	id        string
	name      string
	noteCount int

	notes  lazy[[]*Note]
	loader *loader
}

// OpenNotebook reads the metadata of the .qvnotebook directory at path and
// counts the notes it currently holds. The notes themselves are opened on the
// first call to Notes.
func OpenNotebook(path string, opts ...Option) (*Notebook, error) {
	return openNotebook(absPath(path), newLoader(opts))
}

func openNotebook(path string, l *loader) (*Notebook, error) {
	var m notebookMeta
	if err := decodeMetadata(l.codec, path, &m); err != nil {
		return nil, err
	}
	paths, err := listPackages(path, noteExtension)
	if err != nil {
		return nil, &MalformedNotebookError{Path: path, Err: err}
	}
	return &Notebook{
		path:      path,
		id:        m.UUID,
		name:      m.Name,
		noteCount: len(paths),
		loader:    l,
	}, nil
}

// ID returns the notebook's unique identifier.
func (nb *Notebook) ID() string { return nb.id }

// Name returns the display name of the notebook.
func (nb *Notebook) Name() string { return nb.name }

// Path returns the absolute path of the .qvnotebook directory.
func (nb *Notebook) Path() string { return nb.path }

// NoteCount returns the number of .qvnote entries found when the notebook
// was opened. Unlike Library.NotebookCount it comes from the filesystem, and
// it may differ from len(Notes()) if the directory changed in between.
func (nb *Notebook) NoteCount() int { return nb.noteCount }

// Notes opens every note of the notebook on first use, in lexical order of
// the note directory names, and caches the result.
func (nb *Notebook) Notes() ([]*Note, error) {
	return nb.notes.get(func() ([]*Note, error) {
		paths, err := listPackages(nb.path, noteExtension)
		if err != nil {
			return nil, &MalformedNotebookError{Path: nb.path, Err: err}
		}
		notes := make([]*Note, 0, len(paths))
		for _, p := range paths {
			n, err := openNote(p, nb.loader)
			if err != nil {
				return nil, err
			}
			notes = append(notes, n)
		}
		nb.loader.logger.Debug("quiver: notes loaded",
			slog.String("notebook", nb.id),
			slog.Int("notes", len(notes)))
		return notes, nil
	})
}

// NotesLoaded reports whether Notes has already been materialized.
func (nb *Notebook) NotesLoaded() bool { return nb.notes.isLoaded() }
