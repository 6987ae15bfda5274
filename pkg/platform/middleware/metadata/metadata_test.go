package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedIP     string
		expectedUA     string
	}{
		{
			name: "extracts from RemoteAddr when no trusted proxies",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "Mozilla/5.0",
			},
			remoteAddr:     "192.168.1.1:12345",
			trustedProxies: nil,
			expectedIP:     "192.168.1.1",
			expectedUA:     "Mozilla/5.0",
		},
		{
			name: "trusts XFF when request from trusted proxy",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "curl/7.64.1",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
			expectedUA:     "curl/7.64.1",
		},
		{
			name: "falls back to RemoteAddr when no headers",
			headers: map[string]string{
				"User-Agent": "test-agent",
			},
			remoteAddr:     "192.168.1.100:54321",
			trustedProxies: nil,
			expectedIP:     "192.168.1.100",
			expectedUA:     "test-agent",
		},
		{
			name: "takes the first entry of a forwarded chain",
			headers: map[string]string{
				"X-Forwarded-For": "198.51.100.7, 10.0.0.2",
			},
			remoteAddr:     "10.0.0.1:443",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "198.51.100.7",
		},
		{
			name: "uses X-Real-IP from a trusted proxy",
			headers: map[string]string{
				"X-Real-IP": "198.51.100.9",
			},
			remoteAddr:     "10.0.0.1:443",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "198.51.100.9",
		},
		{
			name: "ignores a malformed forwarded address",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
			},
			remoteAddr:     "10.0.0.1:443",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name: "ignores an oversized forwarded header",
			headers: map[string]string{
				"X-Forwarded-For": strings.Repeat("1", MaxForwardedHeaderLength+1),
			},
			remoteAddr:     "10.0.0.1:443",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name:           "strips brackets and port from IPv6 peers",
			headers:        map[string]string{},
			remoteAddr:     "[2001:db8::1]:8443",
			trustedProxies: nil,
			expectedIP:     "2001:db8::1",
		},
		{
			name:           "handles missing user agent",
			headers:        map[string]string{},
			remoteAddr:     "10.0.0.1:8080",
			trustedProxies: nil,
			expectedIP:     "10.0.0.1",
			expectedUA:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			var prefixes []netip.Prefix
			for _, cidr := range tt.trustedProxies {
				prefix, _ := netip.ParsePrefix(cidr)
				prefixes = append(prefixes, prefix)
			}
			cfg := &Config{TrustedProxies: prefixes}
			mw := NewMiddleware(cfg)
			handler := mw.Handler(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedIP, GetClientIP(capturedCtx), "IP address mismatch")
			assert.Equal(t, tt.expectedUA, GetUserAgent(capturedCtx), "User-Agent mismatch")
		})
	}
}

func TestGetClientIPFromContext(t *testing.T) {
	t.Run("returns empty string for context without IP", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, "", GetClientIP(ctx))
	})

	t.Run("returns IP from context", func(t *testing.T) {
		ctx := WithClientMetadata(context.Background(), "192.168.1.1", "test-agent")
		assert.Equal(t, "192.168.1.1", GetClientIP(ctx))
	})
}

func TestGetUserAgentFromContext(t *testing.T) {
	t.Run("returns empty string for context without UA", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, "", GetUserAgent(ctx))
	})

	t.Run("returns UA from context", func(t *testing.T) {
		ctx := WithClientMetadata(context.Background(), "192.168.1.1", "Mozilla/5.0")
		assert.Equal(t, "Mozilla/5.0", GetUserAgent(ctx))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.4 ", "", "2001:db8::/32"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.4/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, prefixes)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "Unknown Device", DeviceName(""))

	chrome := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	name := DeviceName(chrome)
	assert.True(t, strings.HasPrefix(name, "Chrome on "), name)
	assert.Contains(t, name, "Linux")
}
