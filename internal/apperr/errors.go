// Package apperr holds sentinel errors shared by the application layer.
package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous id")
)
