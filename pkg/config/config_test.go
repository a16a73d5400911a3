package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	path := writeConfig(t, "name: ${SAMPLE_NAME}\ncount: 3\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Count != 3 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	path := writeConfig(t, "count: 3\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoad_OverridesBeforeValidation(t *testing.T) {
	path := writeConfig(t, "name: file\n")
	var s sample
	err := Load(path, &s, func(s *sample) { s.Name = "flag" })
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "flag" {
		t.Errorf("name = %q, want override to win", s.Name)
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Count: 7}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	if err != nil {
		t.Fatal(err)
	}
	if read {
		t.Error("missing file reported as read")
	}
	if s.Name != "default" || s.Count != 7 {
		t.Errorf("defaults changed: %+v", s)
	}
}

func TestLoadOptional_MissingFileStillValidates(t *testing.T) {
	var s sample
	if _, err := LoadOptional("", &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadOptional_ParseError(t *testing.T) {
	path := writeConfig(t, "name: [unterminated\n")
	var s sample
	read, err := LoadOptional(path, &s)
	if !read || err == nil {
		t.Fatalf("read = %v, err = %v; want parse failure", read, err)
	}
}
