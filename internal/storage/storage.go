// Package storage stores uploaded files for related-links items, either in
// an S3-compatible bucket or in a local directory served by the app.
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backend stores and removes uploaded files.
type Backend interface {
	// Put stores body under key and returns the URL the file is reachable at.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the file stored under key.
	Delete(ctx context.Context, key string) error
	// Name identifies the backend in logs.
	Name() string
}

// NewKey builds a unique object key such as "pdf/2026/10/<uuid>.pdf". ext
// should come from the detected content type, never from the client's file
// name.
func NewKey(prefix, ext string, now time.Time) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) || strings.Count(ext, ".") > 1 {
		ext = ""
	}
	return prefix + "/" + now.Format("2006/01") + "/" + uuid.NewString() + ext
}
