package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"
)

type call struct {
	psm       int
	whitelist string
}

type mockRecognizer struct {
	responses []string
	errs      []error
	calls     []call
}

func (m *mockRecognizer) Name() string { return "mock" }

func (m *mockRecognizer) Recognize(ctx context.Context, img image.Image, config Config) (string, error) {
	i := len(m.calls)
	m.calls = append(m.calls, call{psm: config.PSM, whitelist: config.Whitelist})
	var text string
	var err error
	if i < len(m.responses) {
		text = m.responses[i]
	}
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return text, err
}

func TestRecognizeWithFallback(t *testing.T) {
	engineErr := fmt.Errorf("%w: exit status 1", ErrRecognition)
	timeoutErr := fmt.Errorf("%w after 1s", ErrRecognitionTimeout)

	tests := []struct {
		name             string
		responses        []string
		errs             []error
		expectedText     string
		expectedFallback bool
		expectedCalls    int
		expectedErr      error
	}{
		{
			name:          "first attempt succeeds and is trimmed",
			responses:     []string{"  Hello World!\n\n"},
			expectedText:  "Hello World!",
			expectedCalls: 1,
		},
		{
			name:          "empty text is not an error",
			responses:     []string{"\n"},
			expectedText:  "",
			expectedCalls: 1,
		},
		{
			name:             "engine failure retries with fallback",
			responses:        []string{"", "Recovered text\n"},
			errs:             []error{engineErr, nil},
			expectedText:     "Recovered text",
			expectedFallback: true,
			expectedCalls:    2,
		},
		{
			name:          "fallback failure surfaces",
			errs:          []error{engineErr, engineErr},
			expectedCalls: 2,
			expectedErr:   ErrRecognition,
		},
		{
			name:          "timeout is not retried",
			errs:          []error{timeoutErr},
			expectedCalls: 1,
			expectedErr:   ErrRecognitionTimeout,
		},
		{
			name:          "unclassified errors are not retried",
			errs:          []error{errors.New("boom")},
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockRecognizer{responses: tt.responses, errs: tt.errs}
			cfg := Config{OEM: 3, PSM: 6, Whitelist: "ABC", FallbackPSM: 3}

			result, err := RecognizeWithFallback(context.Background(), m, image.NewNRGBA(image.Rect(0, 0, 1, 1)), cfg)

			if len(m.calls) != tt.expectedCalls {
				t.Fatalf("expected %d calls, got %d", tt.expectedCalls, len(m.calls))
			}
			if tt.expectedErr != nil || (len(tt.errs) > 0 && tt.errs[len(tt.errs)-1] != nil) {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Errorf("error = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Text != tt.expectedText {
				t.Errorf("Text = %q, want %q", result.Text, tt.expectedText)
			}
			if result.Fallback != tt.expectedFallback {
				t.Errorf("Fallback = %v, want %v", result.Fallback, tt.expectedFallback)
			}
			if tt.expectedFallback {
				if m.calls[1].psm != 3 || m.calls[1].whitelist != "" {
					t.Errorf("fallback call used %+v, want psm 3 without whitelist", m.calls[1])
				}
			}
		})
	}
}

func TestRecognizeWithFallback_CancelledContextNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockRecognizer{errs: []error{ErrRecognition}}
	if _, err := RecognizeWithFallback(ctx, m, image.NewNRGBA(image.Rect(0, 0, 1, 1)), DefaultConfig()); err == nil {
		t.Fatal("expected error")
	}
	if len(m.calls) != 1 {
		t.Errorf("expected a single call, got %d", len(m.calls))
	}
}

type checkedRecognizer struct {
	mockRecognizer
	err     error
	version string
}

func (c *checkedRecognizer) Available() error { return c.err }
func (c *checkedRecognizer) Version() string { return c.version }

func TestAvailableAndVersion(t *testing.T) {
	errMissing := errors.New("library not linked")

	tests := []struct {
		name            string
		recognizer      Recognizer
		expectedErr     error
		expectedVersion string
	}{
		{"plain recognizer is assumed available", &mockRecognizer{}, nil, ""},
		{"checker reports ready", &checkedRecognizer{version: "5.3.0"}, nil, "5.3.0"},
		{"checker reports failure", &checkedRecognizer{err: errMissing}, errMissing, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Available(tt.recognizer); !errors.Is(err, tt.expectedErr) {
				t.Errorf("Available() = %v, want %v", err, tt.expectedErr)
			}
			if v := Version(tt.recognizer); v != tt.expectedVersion {
				t.Errorf("Version() = %q, want %q", v, tt.expectedVersion)
			}
		})
	}
}
