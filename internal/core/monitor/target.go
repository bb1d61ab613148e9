package monitor

import (
	"context"
	"errors"
	"net"
	"net/netip"
)

// Target is what a monitor probes: either a DNS name that has to be resolved
// into candidate addresses each round, or a literal IP address. The type is a
// closed sum; DNSName and LiteralAddr are the only variants.
type Target interface {
	// String renders the target the way the user wrote it.
	String() string

	sealed()
}

// DNSName is a host name that resolves to one or more candidate addresses.
type DNSName string

func (DNSName) sealed() {}

func (d DNSName) String() string { return string(d) }

// LiteralAddr is an IP address given directly by the user.
type LiteralAddr netip.Addr

func (LiteralAddr) sealed() {}

func (l LiteralAddr) String() string { return netip.Addr(l).String() }

// Addr returns the literal address.
func (l LiteralAddr) Addr() netip.Addr { return netip.Addr(l) }

// ParseTarget turns raw user input into a Target. Any syntactically valid
// IPv4 or IPv6 literal becomes a LiteralAddr; everything else is taken as a
// DNS name as-is, so parsing never fails.
func ParseTarget(s string) Target {
	if addr, err := netip.ParseAddr(s); err == nil {
		return LiteralAddr(addr)
	}
	return DNSName(s)
}

// ErrNoAddresses is returned by a Resolver when the name resolved
// successfully but to zero addresses, as opposed to a resolver failure.
var ErrNoAddresses = errors.New("no addresses found")

// Resolver resolves DNS names into candidate IP addresses. The system
// resolver is used unless a monitor is given another one via WithResolver.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]netip.Addr, error)
}

// systemResolver delegates to the platform resolver service.
type systemResolver struct {
	r *net.Resolver
}

func (s systemResolver) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := s.r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, ErrNoAddresses
	}
	return addrs, nil
}
