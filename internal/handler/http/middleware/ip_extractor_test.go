package middleware

import (
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── RemoteAddrExtractor ───────── */

func TestRemoteAddrExtractor_ExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		expected   string
		wantErr    bool
	}{
		{"IPv4 with port", "192.168.1.1:54321", "192.168.1.1", false},
		{"IPv6 with port", "[2001:db8::1]:443", "2001:db8::1", false},
		{"IPv4 without port", "127.0.0.1", "127.0.0.1", false},
		{"IPv6 without port", "::1", "::1", false},
		{"garbage", "not-an-address", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("X-Forwarded-For", "203.0.113.9")

			ip, err := (&RemoteAddrExtractor{}).ExtractIP(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ip)
		})
	}
}

/* ───────── TrustedProxyExtractor ───────── */

func TestTrustedProxyExtractor_ExtractIP(t *testing.T) {
	tenSlash8 := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name       string
		config     TrustedProxyConfig
		remoteAddr string
		xff        string
		xRealIP    string
		expected   string
	}{
		{"trusted proxy uses XFF", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "10.0.0.5:1", "203.0.113.1", "", "203.0.113.1"},
		{"untrusted peer ignores XFF", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "198.51.100.7:1", "203.0.113.1", "", "198.51.100.7"},
		{"first of several XFF entries", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "10.0.0.5:1", "203.0.113.1, 10.0.0.2, 10.0.0.5", "", "203.0.113.1"},
		{"X-Real-IP fallback", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "10.0.0.5:1", "", "203.0.113.2", "203.0.113.2"},
		{"invalid XFF falls to X-Real-IP", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "10.0.0.5:1", "garbage", "203.0.113.3", "203.0.113.3"},
		{"no headers uses peer", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "10.0.0.5:1", "", "", "10.0.0.5"},
		{"disabled ignores headers", TrustedProxyConfig{Enabled: false}, "10.0.0.5:1", "203.0.113.1", "", "10.0.0.5"},
		{"enabled without list trusts any peer", TrustedProxyConfig{Enabled: true}, "198.51.100.7:1", "203.0.113.1", "", "203.0.113.1"},
		{"IPv6 client behind proxy", TrustedProxyConfig{Enabled: true, AllowedCIDRs: tenSlash8}, "10.0.0.5:1", "2001:db8::1", "", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			ip, err := NewTrustedProxyExtractor(tt.config).ExtractIP(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ip)
		})
	}
}

/* ───────── ParseTrustedProxies ───────── */

func TestParseTrustedProxies(t *testing.T) {
	cfg, err := ParseTrustedProxies(true, []string{"10.0.0.0/8", " 192.168.1.1 ", "", "2001:db8::1"})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
		netip.MustParsePrefix("2001:db8::1/128"),
	}, cfg.AllowedCIDRs)

	assert.True(t, cfg.IsTrusted("192.168.1.1:80"))
	assert.False(t, cfg.IsTrusted("192.168.1.2:80"))
}

func TestParseTrustedProxies_Disabled(t *testing.T) {
	cfg, err := ParseTrustedProxies(false, []string{"not parsed"})
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.IsTrusted("10.0.0.1:1"))
}

func TestParseTrustedProxies_Invalid(t *testing.T) {
	_, err := ParseTrustedProxies(true, []string{"10.0.0.0/8", "nope"})
	assert.EqualError(t, err, `invalid IP or CIDR format "nope"`)
}

func TestNewIPExtractor(t *testing.T) {
	assert.IsType(t, &RemoteAddrExtractor{}, NewIPExtractor(nil))
	assert.IsType(t, &RemoteAddrExtractor{}, NewIPExtractor(&TrustedProxyConfig{}))
	assert.IsType(t, &TrustedProxyExtractor{}, NewIPExtractor(&TrustedProxyConfig{Enabled: true}))
}

func TestParseFirstIP(t *testing.T) {
	assert.Equal(t, "192.168.1.1", parseFirstIP("192.168.1.1, 10.0.0.1"))
	assert.Equal(t, "192.168.1.1", parseFirstIP("192.168.1.1"))
	assert.Equal(t, "", parseFirstIP("invalid, 10.0.0.1"))
	assert.Equal(t, "", parseFirstIP(""))
}
