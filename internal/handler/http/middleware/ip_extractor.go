// Package middleware holds the cross-cutting HTTP middleware of the API:
// CORS, per-client rate limiting and bearer authentication.
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor resolves the client address of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address and ignores forwarding headers.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig decides whose forwarding headers are believed.
// With Enabled set and no AllowedCIDRs, every peer is treated as a proxy.
type TrustedProxyConfig struct {
	Enabled      bool
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr is an accepted proxy.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	if !c.Enabled {
		return false
	}
	if len(c.AllowedCIDRs) == 0 {
		return true
	}

	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies builds a TrustedProxyConfig from IPs or CIDR ranges.
// Single IPs become /32 or /128 prefixes.
func ParseTrustedProxies(enabled bool, proxies []string) (*TrustedProxyConfig, error) {
	cfg := &TrustedProxyConfig{Enabled: enabled}
	if !enabled {
		return cfg, nil
	}

	for _, raw := range proxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			ip, ipErr := netip.ParseAddr(raw)
			if ipErr != nil {
				return nil, fmt.Errorf("invalid IP or CIDR format %q", raw)
			}
			prefix = netip.PrefixFrom(ip, ip.BitLen())
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, prefix)
	}
	return cfg, nil
}

// TrustedProxyExtractor reads X-Forwarded-For, then X-Real-IP, when the peer
// is a trusted proxy, and falls back to the peer address otherwise.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a TrustedProxyExtractor.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// ExtractIP returns the client address.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.IsTrusted(r.RemoteAddr) {
		if e.config.Enabled && r.Header.Get("X-Forwarded-For") != "" {
			slog.Warn("untrusted peer sent X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", r.Header.Get("X-Forwarded-For")),
			)
		}
		return extractIPFromAddr(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip, nil
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String(), nil
		}
	}
	return extractIPFromAddr(r.RemoteAddr)
}

// NewIPExtractor picks the extractor for cfg.
func NewIPExtractor(cfg *TrustedProxyConfig) IPExtractor {
	if cfg == nil || !cfg.Enabled {
		return &RemoteAddrExtractor{}
	}
	return NewTrustedProxyExtractor(*cfg)
}

// extractIPFromAddr accepts "host:port" or a bare IP.
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the left-most entry of an X-Forwarded-For list, or
// "" when it is not an IP.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
