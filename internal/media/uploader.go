// Package media uploads message attachments to the external media store.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind selects the media store resource type for an upload.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Folder returns the destination folder for the kind, mirroring the
// chat_images/chat_videos split in the media store.
func (k Kind) Folder() string {
	if k == KindVideo {
		return "chat_videos"
	}
	return "chat_images"
}

// Uploader stores an attachment payload and returns its canonical URL.
// The payload is the raw reference the client sent (a data URI); the
// returned URL replaces it before the message is persisted.
type Uploader interface {
	Upload(ctx context.Context, payload string, kind Kind, fileName string) (string, error)
}

// ErrNotConfigured is returned when no media store endpoint is set but a
// send carries an attachment.
var ErrNotConfigured = errors.New("media store not configured")

// HTTPUploader talks to a Cloudinary-style unsigned upload endpoint:
// POST {base}/{kind}/upload with file, upload_preset, folder and public_id
// form fields, answered with a JSON body carrying secure_url.
type HTTPUploader struct {
	base   string
	preset string
	client *http.Client
}

// NewHTTPUploader returns an uploader for the given endpoint. A bounded
// client timeout keeps a hung media store from blocking sends forever.
func NewHTTPUploader(base, preset string) *HTTPUploader {
	return &HTTPUploader{
		base:   strings.TrimRight(base, "/"),
		preset: preset,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload sends the payload to the media store and returns the canonical
// secure URL. Any failure aborts the caller's send; no message is
// persisted with a half-uploaded attachment.
func (u *HTTPUploader) Upload(ctx context.Context, payload string, kind Kind, fileName string) (string, error) {
	if u.base == "" {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("file", payload)
	form.Set("upload_preset", u.preset)
	form.Set("folder", kind.Folder())
	// unique destination name; the original file name is kept on the
	// message document, not in the store path
	form.Set("public_id", uuid.NewString())

	endpoint := fmt.Sprintf("%s/%s/upload", u.base, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media store returned status %d", resp.StatusCode)
	}

	var body struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding media store response: %w", err)
	}
	if body.SecureURL == "" {
		return "", errors.New("media store response missing secure_url")
	}

	return body.SecureURL, nil
}
