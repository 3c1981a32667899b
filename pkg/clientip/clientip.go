// Package clientip resolves the address a request came from.
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealClientIP returns the client address from r.RemoteAddr. Proxy headers are
// not read here; chi's RealIP middleware, when mounted, has already folded
// X-Forwarded-For into RemoteAddr, which then carries no port.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if ip, err := netip.ParseAddr(addr); err == nil {
		return ip.Unmap().String()
	}
	return addr
}

// LimitKey groups IPv6 clients by /64, since a single host usually owns the
// whole prefix. IPv4 addresses are returned unchanged.
func LimitKey(r *http.Request) string {
	ip := RealClientIP(r)
	addr, err := netip.ParseAddr(ip)
	if err != nil || addr.Is4() {
		return ip
	}
	prefix, err := addr.Prefix(64)
	if err != nil {
		return ip
	}
	return prefix.String()
}
