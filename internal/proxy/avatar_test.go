package proxy

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmesh/storefront/internal/models"
	"github.com/shopmesh/storefront/internal/reviews"
)

func avatarRouter(p *AvatarProxy) chi.Router {
	r := chi.NewRouter()
	r.Post("/users/{email}/avatar", p.Upload)
	r.Delete("/users/{email}/avatar", p.Remove)
	return r
}

func multipartAvatar(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="avatar"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func seedProfile(t *testing.T, profiles reviews.ProfileRepository, email string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, profiles.Create(context.Background(), &models.UserProfile{
		ID:        "p1",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestAvatarProxy_Upload(t *testing.T) {
	var gotPath, gotAuth string
	blob := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"Key":"ok"}`))
	}))
	defer blob.Close()

	profiles := reviews.NewMemoryProfileRepository()
	seedProfile(t, profiles, "ada@example.com")

	proxy := &AvatarProxy{
		BaseURL:    blob.URL,
		ServiceKey: "blob-key",
		Bucket:     "avatars",
		Profiles:   profiles,
		Logger:     discardLogger(),
	}

	body, contentType := multipartAvatar(t, "image/png", []byte("fake png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/users/ada@example.com/avatar", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	avatarRouter(proxy).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Bearer blob-key", gotAuth)
	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/avatars/ada@example.com/"))
	assert.True(t, strings.HasSuffix(gotPath, ".png"))

	profile, err := profiles.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, profile.AvatarURL, "/storage/v1/object/public/avatars/ada@example.com/")
}

func TestAvatarProxy_UploadRejectsNonImage(t *testing.T) {
	proxy := &AvatarProxy{
		BaseURL:  "http://unused",
		Bucket:   "avatars",
		Profiles: reviews.NewMemoryProfileRepository(),
		Logger:   discardLogger(),
	}

	body, contentType := multipartAvatar(t, "text/plain", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/users/ada@example.com/avatar", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	avatarRouter(proxy).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvatarProxy_RemoveDeletesObjectAndClearsProfile(t *testing.T) {
	var gotMethod, gotPath string
	blob := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte("{}"))
	}))
	defer blob.Close()

	profiles := reviews.NewMemoryProfileRepository()
	seedProfile(t, profiles, "ada@example.com")
	require.NoError(t, profiles.SetAvatar(context.Background(), "ada@example.com",
		blob.URL+"/storage/v1/object/public/avatars/ada@example.com/x.png"))

	proxy := &AvatarProxy{
		BaseURL:    blob.URL,
		ServiceKey: "blob-key",
		Bucket:     "avatars",
		Profiles:   profiles,
		Logger:     discardLogger(),
	}

	req := httptest.NewRequest(http.MethodDelete, "/users/ada@example.com/avatar", nil)
	rec := httptest.NewRecorder()
	avatarRouter(proxy).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/avatars/ada@example.com/x.png", gotPath)

	profile, err := profiles.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Empty(t, profile.AvatarURL)
}

func TestAvatarProxy_RemoveWithoutAvatarIsNoop(t *testing.T) {
	profiles := reviews.NewMemoryProfileRepository()
	seedProfile(t, profiles, "ada@example.com")

	proxy := &AvatarProxy{
		BaseURL:  "http://unused",
		Bucket:   "avatars",
		Profiles: profiles,
		Logger:   discardLogger(),
	}

	req := httptest.NewRequest(http.MethodDelete, "/users/ada@example.com/avatar", nil)
	rec := httptest.NewRecorder()
	avatarRouter(proxy).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	for contentType, want := range cases {
		if got := extensionFor(contentType); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", contentType, got, want)
		}
	}
}
