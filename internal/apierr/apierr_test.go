package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("duplicate"), http.StatusConflict},
		{"unauthorized", Unauthorized("nope"), http.StatusUnauthorized},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"upstream 4xx passes through", Upstream(422, "rejected", nil), 422},
		{"upstream 5xx becomes bad gateway", Upstream(500, "down", nil), http.StatusBadGateway},
		{"upstream unreachable becomes bad gateway", Upstream(0, "down", errors.New("dial")), http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped api error", fmt.Errorf("context: %w", NotFound("missing")), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Status(tc.err); got != tc.want {
				t.Errorf("Status() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(Validation("price must be positive")); got != "price must be positive" {
		t.Errorf("unexpected public message %q", got)
	}

	internal := Internal(errors.New("pq: connection refused"))
	if got := PublicMessage(internal); got != internal.Error() {
		t.Errorf("unexpected internal message %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal(cause)

	if !errors.Is(err, cause) {
		t.Error("Internal must wrap its cause")
	}
}
