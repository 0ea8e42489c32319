package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/security"
	"github.com/shopmesh/storefront/internal/util"
)

var driveFilePattern = regexp.MustCompile(`drive\.google\.com/file/d/([^/?#]+)`)

// ImageProxy fetches a remote image and streams it through, following
// redirects and rejecting non-image content. Known file-sharing links are
// rewritten into their direct-download form first. When a Signer is set,
// requests must carry a valid HMAC signature over the URL so the endpoint
// cannot be used as an open proxy.
type ImageProxy struct {
	Client   *http.Client
	Signer   *security.Signer
	MaxBytes int64
	Logger   *slog.Logger
}

func (p *ImageProxy) Fetch(w http.ResponseWriter, r *http.Request) {
	rawURL := util.GetQueryParam(r, "url", "")
	if rawURL == "" {
		util.ErrorResponse(w, apierr.Validation("missing url parameter"))
		return
	}

	if p.Signer != nil {
		sig := util.GetQueryParam(r, "sig", "")
		if sig == "" || !p.Signer.Verify(rawURL, sig) {
			util.ErrorResponse(w, apierr.Unauthorized("invalid or missing url signature"))
			return
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		util.ErrorResponse(w, apierr.Validation("url must be absolute http(s)"))
		return
	}

	target := RewriteShareURL(rawURL)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid url"))
		return
	}

	resp, err := p.client().Do(req)
	if err != nil {
		util.ErrorResponse(w, apierr.Upstream(0, "failed to fetch image", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		util.ErrorResponse(w, apierr.Upstream(resp.StatusCode, "origin returned an error", nil))
		return
	}

	maxBytes := p.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	body := io.LimitReader(resp.Body, maxBytes)

	contentType := resp.Header.Get("Content-Type")
	var head []byte
	if !strings.HasPrefix(contentType, "image/") {
		// some origins send octet-stream for images; sniff before rejecting
		head = make([]byte, 512)
		n, _ := io.ReadFull(body, head)
		head = head[:n]
		contentType = http.DetectContentType(head)
		if !strings.HasPrefix(contentType, "image/") {
			util.ErrorResponse(w, apierr.Validation("remote content is not an image"))
			return
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if len(head) > 0 {
		if _, err := w.Write(head); err != nil {
			return
		}
	}
	if _, err := io.Copy(w, body); err != nil {
		p.Logger.Debug("image stream aborted", "url", rawURL, "error", err)
	}
}

// RewriteShareURL turns known file-sharing links into direct-download URLs:
// Dropbox share pages become dl.dropboxusercontent.com links, and Google
// Drive viewer links become uc?export=download links. Anything else passes
// through unchanged.
func RewriteShareURL(rawURL string) string {
	if match := driveFilePattern.FindStringSubmatch(rawURL); match != nil {
		return "https://drive.google.com/uc?export=download&id=" + match[1]
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if parsed.Host == "www.dropbox.com" || parsed.Host == "dropbox.com" {
		parsed.Host = "dl.dropboxusercontent.com"
		query := parsed.Query()
		query.Del("dl")
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	return rawURL
}

func (p *ImageProxy) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return DefaultClient
}
