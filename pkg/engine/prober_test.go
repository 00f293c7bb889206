package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeEngine writes a shell script standing in for the tesseract binary.
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes require a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write fake engine: %v", err)
	}
	return p
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name              string
		script            string
		mode              os.FileMode
		timeout           time.Duration
		expectedWorking   bool
		expectedAvailable bool
		expectedVersion   string
		expectedErr       error
		errorContains     string
	}{
		{
			name:              "working engine",
			script:            "echo 'tesseract 5.3.0'\necho ' leptonica-1.82.0'",
			expectedWorking:   true,
			expectedAvailable: true,
			expectedVersion:   "5.3.0",
		},
		{
			name:              "version on stderr",
			script:            "echo 'tesseract 3.05.02' >&2",
			expectedWorking:   true,
			expectedAvailable: true,
			expectedVersion:   "3.05.02",
		},
		{
			name:              "non-zero exit",
			script:            "echo 'Error opening data file' >&2\nexit 3",
			expectedAvailable: true,
			expectedErr:       ErrNonZeroExit,
			errorContains:     "Error opening data file",
		},
		{
			name:              "not executable",
			script:            "echo 'tesseract 5.3.0'",
			mode:              0644,
			expectedAvailable: true,
			expectedErr:       ErrSpawn,
		},
		{
			name:              "hangs past timeout",
			script:            "sleep 5",
			timeout:           200 * time.Millisecond,
			expectedAvailable: true,
			expectedErr:       ErrProbeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := fakeEngine(t, tt.script)
			if tt.mode != 0 {
				if err := os.Chmod(path, tt.mode); err != nil {
					t.Fatalf("chmod failed: %v", err)
				}
			}

			p := NewProber(tt.timeout)
			st := p.Probe(context.Background(), path)

			if st.Working != tt.expectedWorking {
				t.Errorf("Working = %v, want %v (error: %s)", st.Working, tt.expectedWorking, st.LastError)
			}
			if st.Available != tt.expectedAvailable {
				t.Errorf("Available = %v, want %v", st.Available, tt.expectedAvailable)
			}
			if st.PathString() != path {
				t.Errorf("Path = %q, want %q", st.PathString(), path)
			}
			if tt.expectedVersion != "" && st.Version != tt.expectedVersion {
				t.Errorf("Version = %q, want %q", st.Version, tt.expectedVersion)
			}
			if tt.expectedErr != nil {
				if !errors.Is(st.Err, tt.expectedErr) {
					t.Errorf("Err = %v, want %v", st.Err, tt.expectedErr)
				}
				if st.LastError == "" {
					t.Error("expected LastError to be set")
				}
			} else if st.Err != nil {
				t.Errorf("unexpected error: %v", st.Err)
			}
			if tt.errorContains != "" && !strings.Contains(st.LastError, tt.errorContains) {
				t.Errorf("LastError %q does not contain %q", st.LastError, tt.errorContains)
			}
		})
	}
}

func TestProber_ProbeMissingExecutable(t *testing.T) {
	p := NewProber(time.Second)
	path := filepath.Join(t.TempDir(), "does-not-exist")

	st := p.Probe(context.Background(), path)
	if st.Working || st.Available {
		t.Errorf("expected unavailable, got %+v", st)
	}
	if !errors.Is(st.Err, ErrExecutableMissing) {
		t.Errorf("Err = %v, want ErrExecutableMissing", st.Err)
	}
}

func TestProber_ProbeEmptyPath(t *testing.T) {
	st := NewProber(time.Second).Probe(context.Background(), "")
	if st.Path != nil {
		t.Errorf("expected nil path, got %q", *st.Path)
	}
	if !errors.Is(st.Err, ErrEngineUnavailable) {
		t.Errorf("Err = %v, want ErrEngineUnavailable", st.Err)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"tesseract 5.3.0\n leptonica-1.82.0\n", "5.3.0"},
		{"tesseract v5.0.0-alpha-20201231\n", "5.0.0-alpha-20201231"},
		{"tesseract 4.1.1", "4.1.1"},
		{"\n  some other banner\n", "some other banner"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseVersion(tt.input); got != tt.expected {
			t.Errorf("ParseVersion(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
