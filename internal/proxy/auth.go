package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/models"
	"github.com/shopmesh/storefront/internal/reviews"
	"github.com/shopmesh/storefront/internal/util"
)

// AuthProxy forwards sign-up, sign-in and password-reset requests to the
// identity provider's REST API. On successful sign-up it also provisions the
// local user profile row.
type AuthProxy struct {
	BaseURL    string
	ServiceKey string
	Client     *http.Client
	Profiles   reviews.ProfileRepository
	Logger     *slog.Logger
}

type signUpPayload struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"max=80"`
	LastName  string `json:"last_name" validate:"max=80"`
}

func (p *AuthProxy) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload signUpPayload
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateStruct(&payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid sign-up request: %v", err))
		return
	}

	status, upstream, err := p.call(r.Context(), "/signup", map[string]any{
		"email":    payload.Email,
		"password": payload.Password,
		"data": map[string]any{
			"first_name": payload.FirstName,
			"last_name":  payload.LastName,
		},
	})
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}
	if status >= 400 {
		util.ErrorResponse(w, apierr.Upstream(status, upstreamMessage(upstream, "sign-up failed"), nil))
		return
	}

	p.createProfile(r.Context(), payload, upstream)

	util.Success(w, http.StatusCreated, upstream)
}

type signInPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p *AuthProxy) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload signInPayload
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateStruct(&payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid sign-in request: %v", err))
		return
	}

	status, upstream, err := p.call(r.Context(), "/token?grant_type=password", map[string]any{
		"email":    payload.Email,
		"password": payload.Password,
	})
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}
	if status >= 400 {
		// wrong credentials come back as 400 from the provider; present
		// them as 401 to our callers
		if status == http.StatusBadRequest {
			status = http.StatusUnauthorized
		}
		util.ErrorResponse(w, apierr.Upstream(status, upstreamMessage(upstream, "sign-in failed"), nil))
		return
	}

	util.Success(w, http.StatusOK, upstream)
}

type resetPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

func (p *AuthProxy) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordPayload
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateStruct(&payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid reset request: %v", err))
		return
	}

	status, upstream, err := p.call(r.Context(), "/recover", map[string]any{
		"email": payload.Email,
	})
	if err != nil {
		util.ErrorResponse(w, err)
		return
	}
	if status >= 400 {
		util.ErrorResponse(w, apierr.Upstream(status, upstreamMessage(upstream, "password reset failed"), nil))
		return
	}

	util.Success(w, http.StatusOK, map[string]any{
		"message": "password reset email sent",
	})
}

// call performs the single outbound request every proxy operation is allowed.
func (p *AuthProxy) call(ctx context.Context, path string, body map[string]any) (int, map[string]any, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, apierr.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, apierr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.ServiceKey)

	resp, err := p.client().Do(req)
	if err != nil {
		return 0, nil, apierr.Upstream(0, "identity provider unreachable", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, decodeUpstream(resp.Body), nil
}

// createProfile provisions the relational profile row after sign-up. A
// failure here is logged, not surfaced: the account exists upstream either
// way.
func (p *AuthProxy) createProfile(ctx context.Context, payload signUpPayload, upstream map[string]any) {
	if p.Profiles == nil {
		return
	}

	id, _ := upstream["id"].(string)
	if id == "" {
		if user, ok := upstream["user"].(map[string]any); ok {
			id, _ = user["id"].(string)
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	err := p.Profiles.Create(ctx, &models.UserProfile{
		ID:        id,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		p.Logger.Error("failed to create user profile after sign-up", "email", payload.Email, "error", err)
	}
}

func (p *AuthProxy) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return DefaultClient
}
