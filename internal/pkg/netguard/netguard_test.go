package netguard

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPublic(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":          true,
		"2606:4700::1111":  true,
		"127.0.0.1":        false,
		"10.1.2.3":         false,
		"172.16.0.1":       false,
		"192.168.1.10":     false,
		"169.254.169.254":  false,
		"100.64.0.1":       false,
		"0.0.0.0":          false,
		"::1":              false,
		"fe80::1":          false,
		"fd00::1":          false,
		"::ffff:127.0.0.1": false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, IsPublic(netip.MustParseAddr(raw)), raw)
	}
}

func TestCheckURL(t *testing.T) {
	for _, raw := range []string{"http://127.0.0.1:8080/x", "http://[::1]/", "http://169.254.169.254/latest/meta-data"} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.ErrorIs(t, CheckURL(u), ErrBlockedAddress, raw)
	}

	u, err := url.Parse("https://example.com/post")
	require.NoError(t, err)
	assert.NoError(t, CheckURL(u))
}

func TestNewClientRejectsLoopback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(time.Second, false).Get(server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBlockedAddress), "unexpected error: %v", err)

	resp, err := NewClient(time.Second, true).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
