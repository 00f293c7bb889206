package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/ocrweb/internal/utils"
)

// DefaultProbeTimeout bounds the version check.
const DefaultProbeTimeout = 10 * time.Second

var versionPattern = regexp.MustCompile(`(?i)tesseract\s+v?(\d+(?:\.\d+)*[0-9A-Za-z.\-]*)`)

// Prober runs the engine's version query and classifies the result.
type Prober struct {
	Timeout time.Duration
	// VersionFlag is passed as the only argument. Defaults to --version.
	VersionFlag string
}

// NewProber creates a prober. A non-positive timeout means DefaultProbeTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{Timeout: timeout, VersionFlag: "--version"}
}

// Probe checks the executable at path. Every failure leaves Working false and
// fills LastError; the distinct causes are kept apart in Err.
func (p *Prober) Probe(ctx context.Context, path string) Status {
	if path == "" {
		return unavailable(ErrEngineUnavailable)
	}

	st := Status{Path: &path, CheckedAt: time.Now()}
	fail := func(err error) Status {
		st.Working = false
		st.Err = err
		st.LastError = err.Error()
		return st
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(fmt.Errorf("%w: %s", ErrExecutableMissing, path))
	}
	if info.IsDir() {
		return fail(fmt.Errorf("%w: %s is a directory", ErrExecutableMissing, path))
	}
	st.Available = true

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	flag := p.VersionFlag
	if flag == "" {
		flag = "--version"
	}
	cmd := exec.CommandContext(ctx, path, flag)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrSpawn, err))
	}
	err = cmd.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fail(fmt.Errorf("%w after %s", ErrProbeTimeout, timeout))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if out := utils.Truncate(stderr.String(), 200); out != "" {
				return fail(fmt.Errorf("%w: exit code %d - %s", ErrNonZeroExit, exitErr.ExitCode(), out))
			}
			return fail(fmt.Errorf("%w: exit code %d", ErrNonZeroExit, exitErr.ExitCode()))
		}
		return fail(fmt.Errorf("%w: %v", ErrSpawn, err))
	}

	st.Version = ParseVersion(stdout.String())
	if st.Version == "" {
		// Tesseract 3.x prints its banner on stderr.
		st.Version = ParseVersion(stderr.String())
	}
	st.Working = true
	return st
}

// ParseVersion extracts the version number from `tesseract --version`
// output. It falls back to the first non-empty line.
func ParseVersion(output string) string {
	if m := versionPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
