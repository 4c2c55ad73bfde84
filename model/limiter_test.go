package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gateGen blocks every call until released, tracking peak concurrency.
type gateGen struct {
	release chan struct{}
	inUse   atomic.Int32
	peak    atomic.Int32
	err     error
}

func (g *gateGen) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	n := g.inUse.Add(1)
	for {
		old := g.peak.Load()
		if n <= old || g.peak.CompareAndSwap(old, n) {
			break
		}
	}
	defer g.inUse.Add(-1)

	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if g.err != nil {
		return "", g.err
	}
	return "ok", nil
}

func TestLimited_BoundsConcurrency(t *testing.T) {
	inner := &gateGen{release: make(chan struct{})}
	limited := NewLimited(inner, 3, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = limited.Generate(context.Background(), "p", 0.1)
		}()
	}

	// Give the goroutines time to pile up against the gate.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	if peak := inner.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestLimited_ReleasesPermitOnError(t *testing.T) {
	inner := &gateGen{release: make(chan struct{}), err: errors.New("provider down")}
	close(inner.release)
	limited := NewLimited(inner, 1, 0)

	// With a single permit, a leaked permit would make the second call hang.
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := limited.Generate(ctx, "p", 0.1)
		cancel()
		if err == nil {
			t.Fatal("expected provider error")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			t.Fatal("call blocked on a leaked permit")
		}
	}
}

func TestLimited_CallTimeout(t *testing.T) {
	inner := &gateGen{release: make(chan struct{})} // never released
	limited := NewLimited(inner, 1, 30*time.Millisecond)

	_, err := limited.Generate(context.Background(), "p", 0.1)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
	if genErr.Provider != "limiter" {
		t.Errorf("provider = %q", genErr.Provider)
	}
}

func TestLimited_AcquireRespectsContext(t *testing.T) {
	inner := &gateGen{release: make(chan struct{})}
	limited := NewLimited(inner, 1, 0)

	// Occupy the only permit.
	go func() { _, _ = limited.Generate(context.Background(), "p", 0.1) }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := limited.Generate(ctx, "p", 0.1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded while waiting for permit", err)
	}

	close(inner.release)
}

func TestLimited_MinimumOnePermit(t *testing.T) {
	inner := &gateGen{release: make(chan struct{})}
	close(inner.release)
	limited := NewLimited(inner, 0, 0)

	if _, err := limited.Generate(context.Background(), "p", 0.1); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}
