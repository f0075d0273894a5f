package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// fake checker: echoes the URL and records concurrency
type fakeChecker struct {
	delay    func(url string) time.Duration
	calls    atomic.Int32
	inflight atomic.Int32
	mu       sync.Mutex
	peak     int32
}

func (f *fakeChecker) Check(ctx context.Context, target string) domain.CheckResult {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	f.mu.Lock()
	if n > f.peak {
		f.peak = n
	}
	f.mu.Unlock()
	defer f.inflight.Add(-1)

	if f.delay != nil {
		time.Sleep(f.delay(target))
	}
	return domain.CheckResult{URL: target, Working: target != "bad", Status: "fake"}
}

type panicChecker struct{}

func (panicChecker) Check(ctx context.Context, target string) domain.CheckResult {
	if target == "boom" {
		panic("kaboom")
	}
	return domain.CheckResult{URL: target, Working: true}
}

func urlsOf(rs []domain.CheckResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.URL
	}
	return out
}

func TestRunner_PreservesOrderAndDuplicates(t *testing.T) {
	in := []string{"a", "b", "a", "bad", "c", "d", "e", "f", "a"}
	// later URLs finish first
	f := &fakeChecker{delay: func(u string) time.Duration {
		if u == "a" {
			return 30 * time.Millisecond
		}
		return time.Millisecond
	}}
	r := NewRunner(zap.NewNop(), f, 3)

	out, err := r.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(in, urlsOf(out)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if out[3].Working {
		t.Fatalf("failing URL reported working: %+v", out[3])
	}
	if int(f.calls.Load()) != len(in) {
		t.Fatalf("want %d checks, got %d", len(in), f.calls.Load())
	}
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	in := make([]string, 20)
	for i := range in {
		in[i] = "u"
	}
	f := &fakeChecker{delay: func(string) time.Duration { return 10 * time.Millisecond }}
	if _, err := NewRunner(nil, f, DefaultWorkers).Run(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if f.peak > DefaultWorkers {
		t.Fatalf("peak concurrency %d exceeds %d workers", f.peak, DefaultWorkers)
	}
	if f.peak < 2 {
		t.Fatalf("expected parallel checks, peak=%d", f.peak)
	}
}

func TestRunner_EmptyInput(t *testing.T) {
	f := &fakeChecker{}
	out, err := NewRunner(nil, f, 5).Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil result, got %#v", out)
	}
	if f.calls.Load() != 0 {
		t.Fatalf("no check should run for empty input")
	}
}

func TestRunner_CancelledContextStillCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeChecker{}
	out, err := NewRunner(nil, f, 2).Run(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[2].URL != "c" {
		t.Fatalf("want full result, got %+v", out)
	}
}

func TestRunner_RecoversPanics(t *testing.T) {
	out, err := NewRunner(nil, panicChecker{}, 2).Run(context.Background(), []string{"ok", "boom", "ok"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("want 3 results, got %d", len(out))
	}
	if out[1].Working || out[1].URL != "boom" || out[1].Server != domain.Unknown {
		t.Fatalf("panic not turned into a failure record: %+v", out[1])
	}
	if !out[0].Working || !out[2].Working {
		t.Fatalf("other URLs affected: %+v", out)
	}
}

func TestRunner_SubstrateErrors(t *testing.T) {
	if _, err := (&Runner{Workers: 1}).Run(context.Background(), []string{"a"}); !errors.Is(err, ErrNoChecker) {
		t.Fatalf("want ErrNoChecker, got %v", err)
	}
	if _, err := NewRunner(nil, &fakeChecker{}, -1).Run(context.Background(), []string{"a"}); !errors.Is(err, ErrInvalidWorkers) {
		t.Fatalf("want ErrInvalidWorkers, got %v", err)
	}
}
