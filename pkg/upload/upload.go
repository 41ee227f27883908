// Package upload publishes exported images and returns a shareable URL.
//
// The editor treats image hosting as an external service: it hands over the
// bytes and gets back a link. [S3Uploader] talks to any S3-compatible store
// (MinIO, AWS S3, R2) through minio-go.
package upload

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores data and returns a URL from which it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ObjectKey builds "<prefix>/<yyyy>/<mm>/<uuid>-<name>", stripping any
// directory components from name.
func ObjectKey(prefix, name string, now time.Time) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	key := path.Join(now.UTC().Format("2006/01"), uuid.NewString()+"-"+name)
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		key = p + "/" + key
	}
	return key
}
