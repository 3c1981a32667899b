package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	cases := map[string]string{
		"203.0.113.7:5123":         "203.0.113.7",
		"203.0.113.7":              "203.0.113.7",
		"[2001:db8::1]:443":        "2001:db8::1",
		"[::ffff:198.51.100.2]:80": "198.51.100.2",
		" not-an-ip ":              "not-an-ip",
	}
	for remote, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remote
		assert.Equal(t, want, RealClientIP(r), remote)
	}
}

func TestLimitKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[2001:db8:1:2:aaaa::1]:443"
	assert.Equal(t, "2001:db8:1:2::/64", LimitKey(r))

	r.RemoteAddr = "[2001:db8:1:2:bbbb::9]:443"
	assert.Equal(t, "2001:db8:1:2::/64", LimitKey(r))

	r.RemoteAddr = "203.0.113.7:1"
	assert.Equal(t, "203.0.113.7", LimitKey(r))
}
