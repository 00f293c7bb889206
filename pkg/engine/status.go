// Package engine finds the Tesseract executable, checks that it runs, and
// keeps the process-wide record of whether OCR is usable.
package engine

import (
	"errors"
	"time"
)

var (
	// ErrEngineUnavailable means no executable was found at any candidate location.
	ErrEngineUnavailable = errors.New("tesseract executable not found")
	// ErrEngineNotWorking means an executable was found but its version check failed.
	ErrEngineNotWorking = errors.New("tesseract is installed but not working")

	ErrExecutableMissing = errors.New("executable does not exist")
	ErrSpawn             = errors.New("failed to start executable")
	ErrNonZeroExit       = errors.New("version check exited with non-zero status")
	ErrProbeTimeout      = errors.New("version check timed out")
)

// State is the lifecycle position of the engine check.
type State int32

const (
	StateUnprobed State = iota
	StateProbing
	StateWorking
	StateNotWorking
)

func (s State) String() string {
	switch s {
	case StateUnprobed:
		return "unprobed"
	case StateProbing:
		return "probing"
	case StateWorking:
		return "working"
	case StateNotWorking:
		return "not_working"
	default:
		return "unknown"
	}
}

// Status is a snapshot of one locate and probe pass. A new pass replaces the
// whole value; fields are never updated in place.
type Status struct {
	Available bool      `json:"tesseract_available" yaml:"available"`
	Working   bool      `json:"tesseract_working" yaml:"working"`
	Path      *string   `json:"tesseract_path" yaml:"path"`
	Version   string    `json:"tesseract_version,omitempty" yaml:"version,omitempty"`
	LastError string    `json:"error,omitempty" yaml:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`

	// Err classifies the failure for errors.Is checks. Nil when Working.
	Err error `json:"-" yaml:"-"`
}

// PathString returns the located path or "" when none was found.
func (s Status) PathString() string {
	if s.Path == nil {
		return ""
	}
	return *s.Path
}

func unavailable(err error) Status {
	return Status{
		LastError: err.Error(),
		CheckedAt: time.Now(),
		Err:       err,
	}
}
