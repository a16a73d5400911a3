package quiver

// Cell types found in Quiver notes.
const (
	CellText     = "text"
	CellCode     = "code"
	CellMarkdown = "markdown"
	CellLatex    = "latex"
	CellDiagram  = "diagram"
)

// Cell is the most basic unit of a note.
//
// Language is only set for code cells and DiagramType only for diagram
// cells; an empty string means the field was absent.
type Cell struct {
	Type        string `json:"type"`
	Data        string `json:"data"`
	Language    string `json:"language,omitempty"`
	DiagramType string `json:"diagramType,omitempty"`
}

// NewCellFrom returns a copy of other with all four fields duplicated.
func NewCellFrom(other Cell) Cell {
	return Cell{
		Type:        other.Type,
		Data:        other.Data,
		Language:    other.Language,
		DiagramType: other.DiagramType,
	}
}
