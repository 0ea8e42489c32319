package util

import (
	"net"
	"net/http"
	"strings"
)

// MaskIP masks the last octet of an IPv4 address for GDPR compliance
// Example: "1.2.3.4" -> "1.2.3.x"
// For IPv6 or other formats, returns the original string unchanged
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if strings.Count(ip, ":") == 0 && strings.Count(ip, ".") == 3 {
		parts := strings.Split(ip, ".")
		if len(parts) == 4 {
			parts[3] = "x"
			return strings.Join(parts, ".")
		}
	}

	return ip
}

// ClientIP extracts the client IP address from the request.
// Checks X-Forwarded-For, X-Real-IP headers and falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	xForwardedFor := r.Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		// Take the first IP from the list
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		// RemoteAddr might include port, extract just the IP
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return ip
	}

	return ""
}

// GetQueryParam retrieves a query parameter from the request.
// If the parameter is missing, returns the provided default value.
func GetQueryParam(r *http.Request, key string, defaultValue string) string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	return val
}
