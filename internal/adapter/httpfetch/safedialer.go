package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"
)

var errBlockedAddress = errors.New("request to private/reserved network address is not allowed")

// Ranges not covered by the netip.Addr predicates.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),   // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),    // IETF protocol assignments
	netip.MustParsePrefix("192.0.2.0/24"),    // TEST-NET-1
	netip.MustParsePrefix("198.18.0.0/15"),   // benchmarking
	netip.MustParsePrefix("198.51.100.0/24"), // TEST-NET-2
	netip.MustParsePrefix("203.0.113.0/24"),  // TEST-NET-3
}

// newDialer returns a dialer that, unless allowPrivate is set, refuses to
// connect to non-public addresses. The check runs after DNS resolution.
// Behind a proxy the dialer only sees the proxy address; guardedProxy
// covers the target host in that case.
func newDialer(allowPrivate bool) *net.Dialer {
	d := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		d.Control = blockPrivateAddresses
	}
	return d
}

func blockPrivateAddresses(_ string, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", errBlockedAddress, err)
	}
	if isBlockedIP(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", errBlockedAddress, addrPort.Addr())
	}
	return nil
}

func isBlockedIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// guardedProxy checks the target host of every request, redirects included,
// before handing it to the rotator.
func guardedProxy(proxies *ProxyRotator, allowPrivate bool) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		if !allowPrivate {
			if err := checkTargetHost(req.Context(), req.URL.Hostname()); err != nil {
				return nil, err
			}
		}
		return proxies.Proxy(req)
	}
}

func checkTargetHost(ctx context.Context, host string) error {
	if addr, err := netip.ParseAddr(host); err == nil {
		if isBlockedIP(addr) {
			return fmt.Errorf("%w: %s", errBlockedAddress, addr)
		}
		return nil
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		if isBlockedIP(addr) {
			return fmt.Errorf("%w: %s resolves to %s", errBlockedAddress, host, addr)
		}
	}
	return nil
}
