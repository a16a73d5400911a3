package quiver

import "fmt"

// MalformedMetadataError is returned when a meta.json file is missing,
// unreadable, or does not match the expected schema.
type MalformedMetadataError struct {
	Path string // path of the meta.json that was attempted
	Err  error
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("quiver: malformed metadata %s: %v", e.Path, e.Err)
}

func (e *MalformedMetadataError) Unwrap() error { return e.Err }

// MalformedContentError is returned when a note's content.json is missing,
// unreadable, or does not match the expected schema.
type MalformedContentError struct {
	Path string // path of the content.json that was attempted
	Err  error
}

func (e *MalformedContentError) Error() string {
	return fmt.Sprintf("quiver: malformed content %s: %v", e.Path, e.Err)
}

func (e *MalformedContentError) Unwrap() error { return e.Err }

// MalformedNotebookError is returned when the notes of a notebook cannot be listed.
type MalformedNotebookError struct {
	Path string // notebook directory
	Err  error
}

func (e *MalformedNotebookError) Error() string {
	return fmt.Sprintf("quiver: malformed notebook %s: %v", e.Path, e.Err)
}

func (e *MalformedNotebookError) Unwrap() error { return e.Err }

// MalformedLibraryError is returned when the notebooks of a library cannot be listed.
type MalformedLibraryError struct {
	Path string // library directory
	Err  error
}

func (e *MalformedLibraryError) Error() string {
	return fmt.Sprintf("quiver: malformed library %s: %v", e.Path, e.Err)
}

func (e *MalformedLibraryError) Unwrap() error { return e.Err }
