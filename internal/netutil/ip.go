package netutil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the first parseable address in X-Forwarded-For, falling
// back to the connection's remote address. It returns "" when neither holds
// an IP.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.SplitSeq(xff, ",")
		for p := range parts {
			ip := net.ParseIP(strings.TrimSpace(p))
			if ip != nil {
				return ip.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}

func ClassifyUserAgent(ua string) string {
	l := strings.ToLower(ua)
	switch {
	case l == "":
		return "unknown"
	case strings.Contains(l, "bot") || strings.Contains(l, "spider") || strings.Contains(l, "crawl"):
		return "bot"
	case strings.Contains(l, "curl") || strings.Contains(l, "wget"):
		return "cli"
	case strings.Contains(l, "android"):
		return "android_browser"
	case strings.Contains(l, "iphone") || strings.Contains(l, "ipad"):
		return "ios_browser"
	case strings.Contains(l, "mozilla"):
		return "browser"
	default:
		return "other"
	}
}
