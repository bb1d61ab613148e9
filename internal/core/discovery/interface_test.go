package discovery

import (
	"net"
	"testing"
)

func TestBroadcastAddr(t *testing.T) {
	tests := []struct {
		cidr string
		want string
	}{
		{"192.168.1.10/24", "192.168.1.255"},
		{"10.0.0.1/8", "10.255.255.255"},
		{"172.16.5.4/30", "172.16.5.7"},
	}
	for _, tc := range tests {
		ip, ipnet, err := net.ParseCIDR(tc.cidr)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.cidr, err)
		}
		ipnet.IP = ip
		got := BroadcastAddr(ipnet)
		if got.String() != tc.want {
			t.Errorf("BroadcastAddr(%s) = %s, want %s", tc.cidr, got, tc.want)
		}
	}
}

func TestBroadcastAddr_IPv6(t *testing.T) {
	_, ipnet, err := net.ParseCIDR("2001:db8::/64")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := BroadcastAddr(ipnet); got != nil {
		t.Errorf("BroadcastAddr for IPv6 = %v, want nil", got)
	}
}
