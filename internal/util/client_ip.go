package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller IP for rate-limit keying. X-Forwarded-For is
// honored only when the direct peer is loopback or private, which covers a
// local dev proxy without letting remote callers spoof their key.
func ClientIP(r *http.Request) string {
	remoteIP := parseRemoteIP(r.RemoteAddr)
	if remoteIP == nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	if !remoteIP.IsLoopback() && !remoteIP.IsPrivate() {
		return remoteIP.String()
	}
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(hop)); ip != nil {
			return ip.String()
		}
	}
	return remoteIP.String()
}

func parseRemoteIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}
