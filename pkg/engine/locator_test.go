package engine

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", p, err)
	}
	return p
}

func noPath(string) (string, error) { return "", errors.New("not found") }

func TestLocator_Locate(t *testing.T) {
	dir := t.TempDir()
	first := touch(t, dir, "first")
	second := touch(t, dir, "second")
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name         string
		explicit     string
		lookPath     func(string) (string, error)
		searchPaths  []string
		expectedPath string
		expectedOK   bool
	}{
		{
			name:         "PATH lookup wins over search list",
			lookPath:     func(string) (string, error) { return "/from/path/tesseract", nil },
			searchPaths:  []string{first},
			expectedPath: "/from/path/tesseract",
			expectedOK:   true,
		},
		{
			name:         "first existing search path",
			lookPath:     noPath,
			searchPaths:  []string{missing, second, first},
			expectedPath: second,
			expectedOK:   true,
		},
		{
			name:         "explicit path checked first",
			explicit:     first,
			lookPath:     func(string) (string, error) { return "/from/path/tesseract", nil },
			expectedPath: first,
			expectedOK:   true,
		},
		{
			name:         "missing explicit path falls through",
			explicit:     missing,
			lookPath:     noPath,
			searchPaths:  []string{second},
			expectedPath: second,
			expectedOK:   true,
		},
		{
			name:        "directories are not executables",
			lookPath:    noPath,
			searchPaths: []string{dir},
			expectedOK:  false,
		},
		{
			name:        "nothing found",
			lookPath:    noPath,
			searchPaths: []string{missing},
			expectedOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocator("tesseract", tt.explicit, tt.searchPaths)
			l.lookPath = tt.lookPath

			path, ok := l.Locate()
			if ok != tt.expectedOK {
				t.Fatalf("Locate() ok = %v, want %v", ok, tt.expectedOK)
			}
			if path != tt.expectedPath {
				t.Errorf("Locate() path = %q, want %q", path, tt.expectedPath)
			}
		})
	}
}

func TestLocator_Candidates(t *testing.T) {
	l := NewLocator("", "/custom/tesseract", []string{"/usr/bin/tesseract"})
	expected := []string{"/custom/tesseract", "$PATH/tesseract", "/usr/bin/tesseract"}
	if got := l.Candidates(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Candidates() = %v, want %v", got, expected)
	}
}

func TestNewLocator_Defaults(t *testing.T) {
	l := NewLocator("", "", nil)
	if l.Name != DefaultName {
		t.Errorf("expected default name %q, got %q", DefaultName, l.Name)
	}
	if len(l.SearchPaths) == 0 {
		t.Error("expected default search paths")
	}
}
