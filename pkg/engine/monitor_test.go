package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestMonitor_Lifecycle(t *testing.T) {
	path := fakeEngine(t, "echo 'tesseract 5.3.0'")
	l := NewLocator("tesseract", "", []string{path})
	l.lookPath = noPath
	m := NewMonitor(l, NewProber(time.Second))

	if m.State() != StateUnprobed {
		t.Fatalf("expected unprobed, got %s", m.State())
	}
	if st := m.Current(); st.Working || st.LastError == "" {
		t.Errorf("unprobed monitor should report not working with a reason, got %+v", st)
	}

	st := m.Refresh(context.Background())
	if !st.Working {
		t.Fatalf("expected working engine, got %+v", st)
	}
	if m.State() != StateWorking {
		t.Errorf("expected working state, got %s", m.State())
	}
	if got := m.Current(); got.PathString() != path || got.Version != "5.3.0" {
		t.Errorf("Current() = %+v", got)
	}
}

func TestMonitor_RefreshNotFound(t *testing.T) {
	l := NewLocator("tesseract", "", []string{filepath.Join(t.TempDir(), "missing")})
	l.lookPath = noPath
	m := NewMonitor(l, nil)

	st := m.Refresh(context.Background())
	if st.Working || st.Available || st.Path != nil {
		t.Errorf("expected nothing found, got %+v", st)
	}
	if !errors.Is(st.Err, ErrEngineUnavailable) {
		t.Errorf("Err = %v, want ErrEngineUnavailable", st.Err)
	}
	if m.State() != StateNotWorking {
		t.Errorf("expected not_working state, got %s", m.State())
	}
}

func TestMonitor_ConcurrentRefresh(t *testing.T) {
	path := fakeEngine(t, "sleep 0.2\necho 'tesseract 5.3.0'")
	l := NewLocator("tesseract", "", []string{path})
	l.lookPath = noPath
	m := NewMonitor(l, NewProber(5*time.Second))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if st := m.Refresh(context.Background()); !st.Working {
				t.Errorf("expected working engine, got %+v", st)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Current()
		}()
	}
	wg.Wait()

	if m.State() != StateWorking {
		t.Errorf("expected working state, got %s", m.State())
	}
}

func TestMonitor_RefreshIgnoresCancelledCaller(t *testing.T) {
	path := fakeEngine(t, "echo 'tesseract 5.3.0'")
	l := NewLocator("tesseract", "", []string{path})
	l.lookPath = noPath
	m := NewMonitor(l, NewProber(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if st := m.Refresh(ctx); !st.Working {
		t.Errorf("probe should not inherit caller cancellation, got %+v", st)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateUnprobed:   "unprobed",
		StateProbing:    "probing",
		StateWorking:    "working",
		StateNotWorking: "not_working",
		State(42):       "unknown",
	}
	for s, expected := range tests {
		if s.String() != expected {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), expected)
		}
	}
}
