// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package publish posts captured media with its caption to a social network.
package publish

import (
	"context"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
)

// Publisher posts one media file with a caption. A returned error means the
// post did not happen and may be retried.
type Publisher interface {
	Publish(ctx context.Context, path, caption string) error
}

// Status joins the caption with the fixed suffix appended to every post.
func Status(caption, suffix string) string {
	return caption + suffix
}

// contentType guesses the upload MIME type from the file extension.
func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp4":
		return "video/mp4"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// LogPublisher only logs what would be posted. It is used outside
// production so development runs never reach the real account.
type LogPublisher struct {
	Logger *slog.Logger
	Suffix string
}

// Publish logs the post and reports success.
func (p LogPublisher) Publish(ctx context.Context, path, caption string) error {
	p.Logger.InfoContext(ctx, "not production, skipping post",
		"path", path,
		"status", Status(caption, p.Suffix),
		"type", contentType(path))
	return nil
}
