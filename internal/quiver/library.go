// Package quiver loads a Quiver library export into a navigable, read-only
// object graph: Library → Notebook → Note → Cell.
//
// Opening an entity reads only its own metadata. Child collections and note
// content are loaded on first access and memoized for the lifetime of the
// value; a failed load is not cached, so the call may be retried.
package quiver

import "log/slog"

// Library is the top-level collection of notebooks.
type Library struct {
	path          string
	id            string
	notebookCount int

	notebooks lazy[[]*Notebook]
	loader    *loader
}

// OpenLibrary reads the metadata of the .qvlibrary directory at path.
func OpenLibrary(path string, opts ...Option) (*Library, error) {
	l := newLoader(opts)
	path = absPath(path)

	var m libraryMeta
	if err := decodeMetadata(l.codec, path, &m); err != nil {
		return nil, err
	}
	return &Library{
		path:          path,
		id:            m.UUID,
		notebookCount: len(m.Children),
		loader:        l,
	}, nil
}

// ID returns the library's identifier.
func (lib *Library) ID() string { return lib.id }

// Path returns the absolute path of the .qvlibrary directory.
func (lib *Library) Path() string { return lib.path }

// NotebookCount returns the number of children declared in the library
// metadata. It is not reconciled with the notebook directories on disk, so
// it can differ from len(Notebooks()).
func (lib *Library) NotebookCount() int { return lib.notebookCount }

// Notebooks opens every notebook of the library on first use, in lexical
// order of the notebook directory names, and caches the result.
func (lib *Library) Notebooks() ([]*Notebook, error) {
	return lib.notebooks.get(func() ([]*Notebook, error) {
		paths, err := listPackages(lib.path, notebookExtension)
		if err != nil {
			return nil, &MalformedLibraryError{Path: lib.path, Err: err}
		}
		notebooks := make([]*Notebook, 0, len(paths))
		for _, p := range paths {
			nb, err := openNotebook(p, lib.loader)
			if err != nil {
				return nil, err
			}
			notebooks = append(notebooks, nb)
		}
		lib.loader.logger.Debug("quiver: notebooks loaded",
			slog.String("library", lib.id),
			slog.Int("notebooks", len(notebooks)))
		return notebooks, nil
	})
}

// NotebooksLoaded reports whether Notebooks has already been materialized.
func (lib *Library) NotebooksLoaded() bool { return lib.notebooks.isLoaded() }
