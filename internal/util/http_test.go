package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMaskIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.2.3.4", "1.2.3.x"},
		{"203.0.113.254", "203.0.113.x"},
		{"::1", "::1"},
		{"2001:db8::1", "2001:db8::1"},
		{"not-an-ip", "not-an-ip"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := MaskIP(tc.in); got != tc.want {
			t.Errorf("MaskIP(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "203.0.113.9:51234",
			want:       "203.0.113.9",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			want:       "198.51.100.7",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "203.0.113.9",
			want:       "203.0.113.9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for key, value := range tc.headers {
				req.Header.Set(key, value)
			}
			if got := ClientIP(req); got != tc.want {
				t.Errorf("ClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGetQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?url=https%3A%2F%2Fexample.com&empty=", nil)

	if got := GetQueryParam(req, "url", ""); got != "https://example.com" {
		t.Errorf("expected decoded query value, got %q", got)
	}
	if got := GetQueryParam(req, "missing", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for missing param, got %q", got)
	}
	if got := GetQueryParam(req, "empty", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for empty param, got %q", got)
	}
}
