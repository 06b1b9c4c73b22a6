package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{
			name:       "public peer ignores forwarded header",
			remoteAddr: "198.51.100.10:1234",
			xff:        "203.0.113.5",
			want:       "198.51.100.10",
		},
		{
			name:       "loopback peer honors forwarded header",
			remoteAddr: "127.0.0.1:1234",
			xff:        "203.0.113.5",
			want:       "203.0.113.5",
		},
		{
			name:       "private peer honors first forwarded hop",
			remoteAddr: "10.0.0.20:1234",
			xff:        "203.0.113.5, 10.0.0.10",
			want:       "203.0.113.5",
		},
		{
			name:       "unusable forwarded header falls back to peer",
			remoteAddr: "127.0.0.1:1234",
			xff:        "invalid",
			want:       "127.0.0.1",
		},
		{
			name:       "no forwarded header uses peer",
			remoteAddr: "127.0.0.1:1234",
			want:       "127.0.0.1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}
