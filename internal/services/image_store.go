package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"recipe_app_echo/internal/models"
)

// ImageStore persists an uploaded recipe image and returns its public URL
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/heic": "heic",
}

var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"heic": "image/heic",
}

// ImageExtension resolves the stored extension and content type of an upload,
// preferring the declared content type over the file name.
func ImageExtension(filename, contentType string) (ext, resolvedType string, err error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if e, ok := imageExtensions[ct]; ok {
		return e, allowedExtensions[e], nil
	}

	e := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if t, ok := allowedExtensions[e]; ok {
		if e == "jpeg" {
			e = "jpg"
		}
		return e, t, nil
	}
	return "", "", models.ErrUnsupportedImage
}

// ImageObjectName names uploads by the upload time in milliseconds
func ImageObjectName(now time.Time, ext string) string {
	return fmt.Sprintf("recipe_%d.%s", now.UnixMilli(), ext)
}
