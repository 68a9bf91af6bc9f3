// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 30

	// caps the error body quoted back in errors
	maxErrorBody = 512
)

// Client publishes to a Mastodon-compatible API: the file is uploaded as a
// media attachment, polled until processed, then posted as a status.
type Client struct {
	BaseURL     string
	AccessToken string
	Suffix      string

	HTTP         *http.Client
	PollInterval time.Duration
	MaxPolls     int
}

// NewClient returns a client for the given instance.
func NewClient(baseURL, accessToken, suffix string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		AccessToken:  accessToken,
		Suffix:       suffix,
		HTTP:         &http.Client{},
		PollInterval: defaultPollInterval,
		MaxPolls:     defaultMaxPolls,
	}
}

type mediaAttachment struct {
	ID  string  `json:"id"`
	URL *string `json:"url"`
}

type statusRequest struct {
	Status   string   `json:"status"`
	MediaIDs []string `json:"media_ids"`
}

// Publish uploads path and posts it with caption plus the configured suffix.
func (c *Client) Publish(ctx context.Context, path, caption string) error {
	media, err := c.upload(ctx, path)
	if err != nil {
		return err
	}
	if media.URL == nil {
		if err := c.awaitProcessed(ctx, media.ID); err != nil {
			return err
		}
	}
	return c.postStatus(ctx, path, Status(caption, c.Suffix), media.ID)
}

func (c *Client) upload(ctx context.Context, path string) (mediaAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mediaAttachment{}, fmt.Errorf("read media: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", contentType(path))
	part, err := mw.CreatePart(header)
	if err != nil {
		return mediaAttachment{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return mediaAttachment{}, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return mediaAttachment{}, fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v2/media", &body)
	if err != nil {
		return mediaAttachment{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var media mediaAttachment
	if _, err := c.do(req, &media, http.StatusOK, http.StatusAccepted); err != nil {
		return mediaAttachment{}, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return media, nil
}

// awaitProcessed polls the attachment until the server reports it ready.
// Videos are transcoded asynchronously and answer 206 until then.
func (c *Client) awaitProcessed(ctx context.Context, id string) error {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for i := 0; i < c.MaxPolls; i++ {
		req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/media/"+id, nil)
		if err != nil {
			return err
		}
		var media mediaAttachment
		code, err := c.do(req, &media, http.StatusOK, http.StatusPartialContent)
		if err != nil {
			return fmt.Errorf("media %s status: %w", id, err)
		}
		if code == http.StatusOK && media.URL != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return fmt.Errorf("%w: media %s after %d polls", ErrProcessingTimeout, id, c.MaxPolls)
}

func (c *Client) postStatus(ctx context.Context, path, status, mediaID string) error {
	payload, err := json.Marshal(statusRequest{Status: status, MediaIDs: []string{mediaID}})
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/statuses", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", IdempotencyKey(path, status))

	if _, err := c.do(req, nil, http.StatusOK); err != nil {
		return fmt.Errorf("post status: %w", err)
	}
	return nil
}

// IdempotencyKey is stable for a given file and status text, so a retried
// post after a lost response is deduplicated by the server.
func IdempotencyKey(path, status string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path+"\x00"+status)).String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req, checks the status against accepted and decodes the JSON
// body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any, accepted ...int) (int, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	ok := false
	for _, code := range accepted {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %d %s", ErrRejected, req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", req.URL.Path, err)
		}
	}
	return resp.StatusCode, nil
}
