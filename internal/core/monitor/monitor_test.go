package monitor

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/ramonvermeulen/wakewatch/internal/core/probe"
)

// resolverFunc adapts a function to the Resolver interface.
type resolverFunc func(ctx context.Context, host string) ([]netip.Addr, error)

func (f resolverFunc) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	return f(ctx, host)
}

// recordingProber records the addresses probed, in call order, and answers
// via the verdict function.
type recordingProber struct {
	mu      sync.Mutex
	probed  []netip.Addr
	verdict func(addr netip.Addr) error
}

func (p *recordingProber) Ping(_ context.Context, addr netip.Addr) error {
	p.mu.Lock()
	p.probed = append(p.probed, addr)
	p.mu.Unlock()
	return p.verdict(addr)
}

func (p *recordingProber) calls() []netip.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]netip.Addr(nil), p.probed...)
}

func collect(t *testing.T, verdicts <-chan bool, n int) []bool {
	t.Helper()
	got := make([]bool, 0, n)
	for i := 0; i < n; i++ {
		select {
		case v, ok := <-verdicts:
			if !ok {
				t.Fatalf("verdict stream closed after %d of %d verdicts", i, n)
			}
			got = append(got, v)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for verdict %d of %d", i+1, n)
		}
	}
	return got
}

func TestWatch_FirstVerdictImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	down := &recordingProber{verdict: func(netip.Addr) error { return probe.ErrNotReadable }}
	m := New(ParseTarget("192.0.2.7"), time.Second, WithProber(down))

	start := time.Now()
	verdicts := m.Watch(ctx)
	got := collect(t, verdicts, 1)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("first verdict took %v, expected it before the first interval", elapsed)
	}
	if got[0] {
		t.Error("verdict = true for a failing prober, want false")
	}
}

func TestWatch_VerdictsSpacedByInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const interval = 100 * time.Millisecond
	up := &recordingProber{verdict: func(netip.Addr) error { return nil }}
	m := New(ParseTarget("192.0.2.7"), interval, WithProber(up))

	verdicts := m.Watch(ctx)
	var stamps []time.Time
	for i := 0; i < 3; i++ {
		collect(t, verdicts, 1)
		stamps = append(stamps, time.Now())
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < interval/2 {
			t.Errorf("gap %d between verdicts = %v, want about %v", i, gap, interval)
		}
	}
}

func TestWatch_EmptyResolutionIsFalseNotFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	lookups := 0
	noAddrs := resolverFunc(func(context.Context, string) ([]netip.Addr, error) {
		mu.Lock()
		lookups++
		mu.Unlock()
		return nil, ErrNoAddresses
	})
	up := &recordingProber{verdict: func(netip.Addr) error { return nil }}
	m := New(ParseTarget("sleeper.local"), 50*time.Millisecond,
		WithProber(up), WithResolver(noAddrs))

	got := collect(t, m.Watch(ctx), 3)
	for i, v := range got {
		if v {
			t.Errorf("verdict %d = true with zero candidates, want false", i)
		}
	}
	// The cache stayed empty, so every round resolved again.
	mu.Lock()
	defer mu.Unlock()
	if lookups < 3 {
		t.Errorf("resolver called %d times, want once per round", lookups)
	}
	if calls := up.calls(); len(calls) != 0 {
		t.Errorf("prober called %d times with zero candidates, want 0", len(calls))
	}
}

func TestWatch_RaceCachesWinningAddress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := netip.MustParseAddr("192.0.2.10")
	fast := netip.MustParseAddr("192.0.2.20")
	var mu sync.Mutex
	lookups := 0
	twoAddrs := resolverFunc(func(context.Context, string) ([]netip.Addr, error) {
		mu.Lock()
		lookups++
		mu.Unlock()
		return []netip.Addr{slow, fast}, nil
	})
	// The first resolved address never answers; the second one does.
	prober := &recordingProber{verdict: func(addr netip.Addr) error {
		if addr == slow {
			time.Sleep(2 * time.Second)
			return probe.ErrNotReadable
		}
		return nil
	}}
	m := New(ParseTarget("sleeper.local"), 200*time.Millisecond,
		WithProber(prober), WithResolver(twoAddrs))

	got := collect(t, m.Watch(ctx), 2)
	if !got[0] || !got[1] {
		t.Fatalf("verdicts = %v, want both true", got)
	}

	// Round 2 must have probed only the cached winner, with no fresh lookup.
	mu.Lock()
	finalLookups := lookups
	mu.Unlock()
	if finalLookups != 1 {
		t.Errorf("resolver called %d times, want 1 (second round served from cache)", finalLookups)
	}
	calls := prober.calls()
	if len(calls) == 0 || calls[len(calls)-1] != fast {
		t.Errorf("last probed address = %v, want cached winner %v", calls, fast)
	}
}

func TestWatch_StaleCacheDiscardedAfterOneFailedRound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := netip.MustParseAddr("192.0.2.30")
	var mu sync.Mutex
	lookups := 0
	oneAddr := resolverFunc(func(context.Context, string) ([]netip.Addr, error) {
		mu.Lock()
		lookups++
		mu.Unlock()
		return []netip.Addr{addr}, nil
	})
	// Replies in round 1, then goes silent.
	round := 0
	prober := &recordingProber{verdict: func(netip.Addr) error {
		mu.Lock()
		round++
		r := round
		mu.Unlock()
		if r == 1 {
			return nil
		}
		return probe.ErrNotReadable
	}}
	m := New(ParseTarget("sleeper.local"), 50*time.Millisecond,
		WithProber(prober), WithResolver(oneAddr))

	got := collect(t, m.Watch(ctx), 3)
	want := []bool{true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("verdict %d = %v, want %v", i, got[i], want[i])
		}
	}
	// Round 1 resolved, round 2 used the cache, round 3 had to resolve again
	// because the failed round cleared it.
	mu.Lock()
	defer mu.Unlock()
	if lookups != 2 {
		t.Errorf("resolver called %d times, want 2", lookups)
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	up := &recordingProber{verdict: func(netip.Addr) error { return nil }}
	m := New(ParseTarget("192.0.2.7"), 50*time.Millisecond, WithProber(up))

	verdicts := m.Watch(ctx)
	collect(t, verdicts, 1)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-verdicts:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("verdict stream not closed after cancellation")
		}
	}
}

func TestWatch_ResolverFailureAbsorbed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := resolverFunc(func(context.Context, string) ([]netip.Addr, error) {
		return nil, errors.New("resolver transport failure")
	})
	up := &recordingProber{verdict: func(netip.Addr) error { return nil }}
	m := New(ParseTarget("sleeper.local"), 50*time.Millisecond,
		WithProber(up), WithResolver(boom))

	if got := collect(t, m.Watch(ctx), 1); got[0] {
		t.Error("verdict = true despite resolver failure, want false")
	}
}
