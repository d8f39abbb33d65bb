package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPExtractor resolves the client address, trusting forwarding headers only
// when the direct peer is a known proxy.
type IPExtractor struct {
	trustedProxies []*net.IPNet
}

// NewIPExtractor trusts loopback and private ranges plus any extra CIDRs.
func NewIPExtractor(extra ...string) (*IPExtractor, error) {
	e := &IPExtractor{}
	for _, cidr := range append([]string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}, extra...) {
		if err := e.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddTrustedProxy adds a trusted proxy network
func (e *IPExtractor) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	e.trustedProxies = append(e.trustedProxies, network)
	return nil
}

// ClientIP returns the first valid X-Forwarded-For entry, then X-Real-IP,
// then the peer address.
func (e *IPExtractor) ClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	peer := net.ParseIP(directIP)
	if peer == nil || !e.trusted(peer) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (e *IPExtractor) trusted(ip net.IP) bool {
	for _, network := range e.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
