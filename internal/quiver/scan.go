package quiver

import (
	"os"
	"path/filepath"
	"strings"
)

// listPackages returns the paths of the entries of dir whose name ends with
// ext. os.ReadDir sorts by file name, so the order is lexical.
func listPackages(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// absPath resolves path so that sanitized resource paths are absolute.
// If the working directory is unavailable the cleaned path is kept.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
