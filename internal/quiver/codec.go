package quiver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_codec.go -package=mocks github.com/starford/quiverlib/internal/quiver Codec

const (
	metaFileName      = "meta.json"
	contentFileName   = "content.json"
	resourcesDirName  = "resources"
	notebookExtension = ".qvnotebook"
	noteExtension     = ".qvnote"
)

// Codec decodes the file at path into v.
// Unknown fields must be ignored; any read or shape error is returned as is.
type Codec interface {
	Decode(path string, v any) error
}

// JSONCodec is the default Codec backed by encoding/json.
type JSONCodec struct{}

// Decode reads path and unmarshals it into v.
func (JSONCodec) Decode(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

type libraryMeta struct {
	UUID     string `json:"uuid"`
	Children []struct {
		UUID string `json:"uuid"`
	} `json:"children"`
}

type notebookMeta struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type noteMeta struct {
	UUID      string      `json:"uuid"`
	Title     string      `json:"title"`
	Tags      []string    `json:"tags"`
	CreatedAt epochString `json:"created_at"`
	UpdatedAt epochString `json:"updated_at"`
}

// epochString holds a timestamp that Quiver writes either as a JSON number
// or as a JSON string. The textual form is kept unchanged.
type epochString string

func (s *epochString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = epochString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("timestamp must be a string or a number: %w", err)
	}
	*s = epochString(n.String())
	return nil
}

type noteContent struct {
	Title string `json:"title"`
	Cells []Cell `json:"cells"`
}

// decodeMetadata decodes dir/meta.json into v. On failure v may be partially
// filled and must be discarded.
func decodeMetadata(codec Codec, dir string, v any) error {
	path := filepath.Join(dir, metaFileName)
	if err := codec.Decode(path, v); err != nil {
		return &MalformedMetadataError{Path: path, Err: err}
	}
	return nil
}

func decodeContent(codec Codec, dir string) (*noteContent, error) {
	path := filepath.Join(dir, contentFileName)
	var c noteContent
	if err := codec.Decode(path, &c); err != nil {
		return nil, &MalformedContentError{Path: path, Err: err}
	}
	return &c, nil
}
