package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Monitor holds the process-wide engine Status. Reads are lock-free and
// always see a complete snapshot; Refresh swaps in a new one atomically.
type Monitor struct {
	locator *Locator
	prober  *Prober

	status atomic.Pointer[Status]
	state  atomic.Int32
	group  singleflight.Group
}

// NewMonitor creates a monitor in the unprobed state.
func NewMonitor(locator *Locator, prober *Prober) *Monitor {
	if locator == nil {
		locator = NewLocator(DefaultName, "", nil)
	}
	if prober == nil {
		prober = NewProber(DefaultProbeTimeout)
	}
	return &Monitor{locator: locator, prober: prober}
}

// Current returns the latest snapshot without blocking on a running probe.
func (m *Monitor) Current() Status {
	if st := m.status.Load(); st != nil {
		return *st
	}
	return Status{LastError: "engine has not been probed"}
}

// State reports where the monitor is in its lifecycle.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Candidates lists the locations the locator checks.
func (m *Monitor) Candidates() []string {
	return m.locator.Candidates()
}

// Refresh locates and probes the engine, then publishes the result.
// Concurrent callers share a single probe.
func (m *Monitor) Refresh(ctx context.Context) Status {
	// The probe outlives a cancelled caller since other callers may share it.
	ctx = context.WithoutCancel(ctx)
	v, _, _ := m.group.Do("probe", func() (interface{}, error) {
		m.state.Store(int32(StateProbing))

		var st Status
		path, ok := m.locator.Locate()
		if !ok {
			st = unavailable(ErrEngineUnavailable)
		} else {
			st = m.prober.Probe(ctx, path)
		}

		m.status.Store(&st)
		if st.Working {
			m.state.Store(int32(StateWorking))
			slog.Info("Tesseract engine is working", "path", st.PathString(), "version", st.Version)
		} else {
			m.state.Store(int32(StateNotWorking))
			slog.Warn("Tesseract engine is not working", "path", st.PathString(), "error", st.LastError)
		}
		return st, nil
	})
	return v.(Status)
}
