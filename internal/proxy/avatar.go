package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/reviews"
	"github.com/shopmesh/storefront/internal/util"
)

const maxAvatarBytes = 5 << 20

// AvatarProxy uploads avatars to the blob storage service and records the
// public URL on the user's profile row.
type AvatarProxy struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Client     *http.Client
	Profiles   reviews.ProfileRepository
	Logger     *slog.Logger
}

func (p *AvatarProxy) Upload(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := util.ValidateEmail(email); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid email address"))
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		util.ErrorResponse(w, apierr.Validation("missing avatar file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		util.ErrorResponse(w, apierr.Validation("avatar must be an image"))
		return
	}

	ext := extensionFor(contentType)
	objectPath := fmt.Sprintf("%s/%s/%s%s", p.Bucket, email, uuid.NewString(), ext)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		p.BaseURL+"/storage/v1/object/"+objectPath, file)
	if err != nil {
		util.ErrorResponse(w, apierr.Internal(err))
		return
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.ServiceKey)
	req.ContentLength = header.Size

	resp, err := p.client().Do(req)
	if err != nil {
		util.ErrorResponse(w, apierr.Upstream(0, "blob storage unreachable", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		upstream := decodeUpstream(resp.Body)
		util.ErrorResponse(w, apierr.Upstream(resp.StatusCode, upstreamMessage(upstream, "avatar upload failed"), nil))
		return
	}
	io.Copy(io.Discard, resp.Body)

	publicURL := p.BaseURL + "/storage/v1/object/public/" + objectPath
	if err := p.Profiles.SetAvatar(r.Context(), email, publicURL); err != nil {
		util.ErrorResponse(w, apierr.Internal(err))
		return
	}

	util.Success(w, http.StatusOK, map[string]any{"avatar_url": publicURL})
}

// Remove deletes the stored avatar object and clears the profile reference.
// A profile with no avatar is not an error.
func (p *AvatarProxy) Remove(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := util.ValidateEmail(email); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid email address"))
		return
	}

	profile, err := p.Profiles.GetByEmail(r.Context(), email)
	if err != nil {
		util.ErrorResponse(w, apierr.Internal(err))
		return
	}
	if profile == nil || profile.AvatarURL == "" {
		util.Success(w, http.StatusOK, nil)
		return
	}

	marker := "/storage/v1/object/public/"
	if idx := strings.Index(profile.AvatarURL, marker); idx >= 0 {
		objectPath := profile.AvatarURL[idx+len(marker):]

		req, err := http.NewRequestWithContext(r.Context(), http.MethodDelete,
			p.BaseURL+"/storage/v1/object/"+objectPath, nil)
		if err != nil {
			util.ErrorResponse(w, apierr.Internal(err))
			return
		}
		req.Header.Set("Authorization", "Bearer "+p.ServiceKey)

		resp, err := p.client().Do(req)
		if err != nil {
			util.ErrorResponse(w, apierr.Upstream(0, "blob storage unreachable", err))
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// a 404 from storage just means the object is already gone
		if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
			util.ErrorResponse(w, apierr.Upstream(resp.StatusCode, "avatar removal failed", nil))
			return
		}
	}

	if err := p.Profiles.SetAvatar(r.Context(), email, ""); err != nil {
		util.ErrorResponse(w, apierr.Internal(err))
		return
	}

	util.Success(w, http.StatusOK, nil)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func (p *AvatarProxy) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return DefaultClient
}
