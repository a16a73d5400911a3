// Package storage writes rendered output below a single root directory.
package storage

// Provider is the interface for output file operations.
type Provider interface {
	// List returns the paths (relative to root) of files matching pattern.
	List(pattern string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Checksum returns the digest of the file at path (relative to root).
	Checksum(path string) (string, error)
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
