// Package monitor watches a single remote host by pinging it periodically
// and reports, once per round, whether the host is reachable.
package monitor

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/ramonvermeulen/wakewatch/internal/core/probe"
	"go.uber.org/zap"
)

// Prober reports whether a single address answers an ICMP echo request. The
// default prober is [probe.Ping]; tests inject fakes.
type Prober interface {
	Ping(ctx context.Context, addr netip.Addr) error
}

// ProberFunc adapts a plain function to the Prober interface.
type ProberFunc func(ctx context.Context, addr netip.Addr) error

func (f ProberFunc) Ping(ctx context.Context, addr netip.Addr) error { return f(ctx, addr) }

// Monitor periodically checks whether a target is reachable. It remembers
// the last address that replied and probes only that one on the next round,
// skipping DNS resolution and multi-address racing while the host stays up.
// A cached address that stops answering is discarded after exactly one
// failed round.
type Monitor struct {
	target   Target
	interval time.Duration
	prober   Prober
	resolver Resolver
	log      *zap.Logger
}

// Option configures a Monitor during creation.
type Option func(*Monitor)

// WithProber replaces the ICMP prober, mainly for tests.
func WithProber(p Prober) Option {
	return func(m *Monitor) { m.prober = p }
}

// WithResolver replaces the system resolver, mainly for tests.
func WithResolver(r Resolver) Option {
	return func(m *Monitor) { m.resolver = r }
}

// New creates a Monitor that probes target once per interval. The interval
// also bounds each round: probes still outstanding when it elapses are
// abandoned.
func New(target Target, interval time.Duration, options ...Option) *Monitor {
	m := &Monitor{
		target:   target,
		interval: interval,
		prober:   ProberFunc(probe.Ping),
		resolver: systemResolver{net.DefaultResolver},
		log:      zap.L().Named("monitor"),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Watch starts probing and returns an unbounded stream of reachability
// verdicts, exactly one per round. The first round fires immediately, later
// rounds every interval. The stream never fails: probe and resolution errors
// all collapse into a false verdict. The channel is closed when ctx is done;
// a Monitor is not restartable, create a fresh one instead.
func (m *Monitor) Watch(ctx context.Context) <-chan bool {
	verdicts := make(chan bool)
	go m.run(ctx, verdicts)
	return verdicts
}

func (m *Monitor) run(ctx context.Context, verdicts chan<- bool) {
	defer close(verdicts)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// The cache is owned by this loop and handed from one round to the
	// next; the concurrent probes inside a round never touch it.
	var cached netip.Addr
	for {
		online, winner := m.round(ctx, cached)
		cached = winner
		select {
		case verdicts <- online:
		case <-ctx.Done():
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// round races one probe per candidate address and reports whether any of
// them replied within the round's deadline, along with the winning address
// to cache for the next round. A round that finds no responder returns an
// invalid address, leaving the cache empty.
func (m *Monitor) round(ctx context.Context, cached netip.Addr) (bool, netip.Addr) {
	rctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	candidates := m.candidates(rctx, cached)
	if len(candidates) == 0 {
		return false, netip.Addr{}
	}

	// The buffer lets losing probes deliver their verdict and exit after
	// the round has moved on.
	results := make(chan netip.Addr, len(candidates))
	for _, addr := range candidates {
		go func(addr netip.Addr) {
			if err := m.prober.Ping(rctx, addr); err != nil {
				m.log.Debug("probe failed",
					zap.String("addr", addr.String()),
					zap.Error(err),
				)
				results <- netip.Addr{}
				return
			}
			results <- addr
		}(addr)
	}

	for pending := len(candidates); pending > 0; pending-- {
		select {
		case addr := <-results:
			if addr.IsValid() {
				m.log.Debug("target reachable", zap.String("addr", addr.String()))
				return true, addr
			}
		case <-rctx.Done():
			return false, netip.Addr{}
		}
	}
	return false, netip.Addr{}
}

// candidates computes the addresses to probe this round: the cached address
// if one is set, the literal address for literal targets, or whatever the
// name resolves to. Resolution failure is not fatal, it just means an empty
// candidate set and thus a false verdict for this round.
func (m *Monitor) candidates(ctx context.Context, cached netip.Addr) []netip.Addr {
	if cached.IsValid() {
		m.log.Debug("using cached address", zap.String("addr", cached.String()))
		return []netip.Addr{cached}
	}
	switch target := m.target.(type) {
	case LiteralAddr:
		return []netip.Addr{target.Addr()}
	case DNSName:
		addrs, err := m.resolver.LookupHost(ctx, string(target))
		if err != nil {
			m.log.Debug("resolution failed",
				zap.String("name", string(target)),
				zap.Error(err),
			)
			return nil
		}
		return addrs
	}
	return nil
}
