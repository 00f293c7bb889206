package engine

import (
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
)

// DefaultName is the conventional executable name looked up on PATH.
const DefaultName = "tesseract"

// DefaultSearchPaths returns the known installation locations for the
// current platform, in the order they are checked after the PATH lookup.
func DefaultSearchPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\Program Files\Tesseract-OCR\tesseract.exe`,
			`C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`,
		}
	}
	return []string{
		"/usr/bin/tesseract",
		"/usr/local/bin/tesseract",
		"/opt/homebrew/bin/tesseract",
		"/app/.apt/usr/bin/tesseract",
		"/opt/bin/tesseract",
	}
}

// Locator finds an installed engine executable.
type Locator struct {
	// Name is looked up on PATH.
	Name string
	// Explicit is an operator supplied path checked before anything else.
	Explicit string
	// SearchPaths are checked in order after the PATH lookup.
	SearchPaths []string

	lookPath func(string) (string, error)
	stat     func(string) (fs.FileInfo, error)
}

// NewLocator creates a locator. An empty name means DefaultName and a nil
// searchPaths means DefaultSearchPaths.
func NewLocator(name, explicit string, searchPaths []string) *Locator {
	if name == "" {
		name = DefaultName
	}
	if searchPaths == nil {
		searchPaths = DefaultSearchPaths()
	}
	return &Locator{
		Name:        name,
		Explicit:    explicit,
		SearchPaths: searchPaths,
		lookPath:    exec.LookPath,
		stat:        os.Stat,
	}
}

// Locate returns the first candidate that exists as a regular file.
// Not finding one is reported through ok, not as an error.
func (l *Locator) Locate() (path string, ok bool) {
	if l.Explicit != "" {
		if l.exists(l.Explicit) {
			return l.Explicit, true
		}
		slog.Warn("Configured tesseract path does not exist, searching elsewhere", "path", l.Explicit)
	}

	if l.Name != "" {
		if p, err := l.lookPath(l.Name); err == nil && p != "" {
			return p, true
		}
	}

	for _, p := range l.SearchPaths {
		if l.exists(p) {
			return p, true
		}
	}
	return "", false
}

// Candidates lists every location Locate considers, in order.
func (l *Locator) Candidates() []string {
	out := make([]string, 0, len(l.SearchPaths)+2)
	if l.Explicit != "" {
		out = append(out, l.Explicit)
	}
	if l.Name != "" {
		out = append(out, "$PATH/"+l.Name)
	}
	return append(out, l.SearchPaths...)
}

func (l *Locator) exists(path string) bool {
	info, err := l.stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
