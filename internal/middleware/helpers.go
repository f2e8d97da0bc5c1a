package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// ProxyTrust decides whether X-Forwarded-For / X-Real-IP may be believed for
// a request. Mode is "auto" (trust only listed proxies), "true" or "false".
type ProxyTrust struct {
	mode  string
	ips   []net.IP
	cidrs []*net.IPNet
}

// NewProxyTrust parses a list of proxy IPs and CIDR ranges. Unparseable
// entries are logged and skipped.
func NewProxyTrust(mode string, trusted []string) *ProxyTrust {
	pt := &ProxyTrust{mode: mode}
	for _, entry := range trusted {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				slog.Warn("ignoring invalid trusted proxy range", "value", entry)
				continue
			}
			pt.cidrs = append(pt.cidrs, ipNet)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			pt.ips = append(pt.ips, ip)
		} else {
			slog.Warn("ignoring invalid trusted proxy ip", "value", entry)
		}
	}
	return pt
}

// Trusted reports whether ipStr is a listed proxy.
func (pt *ProxyTrust) Trusted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, p := range pt.ips {
		if p.Equal(ip) {
			return true
		}
	}
	for _, n := range pt.cidrs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client that made r, looking through
// proxy headers only when the immediate peer is trusted.
func (pt *ProxyTrust) ClientIP(r *http.Request) string {
	remoteIP := ExtractIP(r.RemoteAddr)

	var shouldTrust bool
	switch pt.mode {
	case "true":
		shouldTrust = true
	case "false":
		shouldTrust = false
	default:
		shouldTrust = pt.Trusted(remoteIP)
	}
	if !shouldTrust {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remoteIP
}

// ExtractIP strips the port from a "host:port" address. Bare IPv4 and IPv6
// addresses are returned unchanged.
func ExtractIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
