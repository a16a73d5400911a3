package quiver

import (
	"path/filepath"
	"strings"
)

// ResourceMarker is the placeholder Quiver writes in place of a note's
// resources directory inside cell data.
const ResourceMarker = "quiver-image-url"

// SanitizeCell returns a copy of c in which every occurrence of
// ResourceMarker is replaced by the resources directory of the note stored
// at noteDir. The directory does not have to exist.
func SanitizeCell(noteDir string, c Cell) Cell {
	out := NewCellFrom(c)
	out.Data = strings.ReplaceAll(out.Data, ResourceMarker, filepath.Join(noteDir, resourcesDirName))
	return out
}

func sanitizeCells(noteDir string, cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = SanitizeCell(noteDir, c)
	}
	return out
}
