// Package proxy holds the edge proxies: narrow stateless handlers that
// validate input, call exactly one external service and reshape the result
// into the uniform JSON envelope. No retries anywhere; callers re-issue
// requests themselves.
package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// DefaultClient bounds every outbound call. Proxies share it unless a test
// injects its own.
var DefaultClient = &http.Client{Timeout: 15 * time.Second}

// decodeUpstream reads an upstream JSON body into a generic map. A body that
// is not JSON yields an empty map rather than an error; the status code is
// what drives the outcome.
func decodeUpstream(body io.Reader) map[string]any {
	result := make(map[string]any)
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&result); err != nil {
		return map[string]any{}
	}
	return result
}

// upstreamMessage digs a human-readable error message out of the upstream
// payload, trying the field names the supported providers use.
func upstreamMessage(payload map[string]any, fallback string) string {
	for _, field := range []string{"msg", "message", "error_description"} {
		if msg, ok := payload[field].(string); ok && msg != "" {
			return msg
		}
	}
	if errObj, ok := payload["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if msg, ok := payload["error"].(string); ok && msg != "" {
		return msg
	}
	return fallback
}
