package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"

	"recipe_app_echo/internal/models"
)

func TestImageExtension(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		ext         string
		resolved    string
		err         error
	}{
		{name: "content type wins", filename: "photo.png", contentType: "image/jpeg", ext: "jpg", resolved: "image/jpeg"},
		{name: "content type with params", filename: "x", contentType: "image/webp; charset=binary", ext: "webp", resolved: "image/webp"},
		{name: "extension fallback", filename: "cake.JPEG", contentType: "application/octet-stream", ext: "jpg", resolved: "image/jpeg"},
		{name: "heic", filename: "IMG_0001.heic", contentType: "", ext: "heic", resolved: "image/heic"},
		{name: "not an image", filename: "notes.pdf", contentType: "application/pdf", err: models.ErrUnsupportedImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, resolved, err := ImageExtension(tt.filename, tt.contentType)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.resolved, resolved)
		})
	}
}

func TestImageObjectName(t *testing.T) {
	at := time.UnixMilli(1717171717171)
	assert.Equal(t, "recipe_1717171717171.png", ImageObjectName(at, "png"))
}

func TestFirebaseDownloadURL(t *testing.T) {
	got := FirebaseDownloadURL("recipes-app.appspot.com", "recipes/recipe_1.jpg", "abc-123")
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/recipes-app.appspot.com/o/recipes%2Frecipe_1.jpg?alt=media&token=abc-123",
		got)
}

type fakeUploader struct {
	bucket      string
	path        string
	contentType string
	body        string
}

func (f *fakeUploader) UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	f.bucket = bucketID
	f.path = relativePath
	if len(fileOptions) > 0 && fileOptions[0].ContentType != nil {
		f.contentType = *fileOptions[0].ContentType
	}
	b, _ := io.ReadAll(data)
	f.body = string(b)
	return storage_go.FileUploadResponse{}, nil
}

func (f *fakeUploader) GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{
		SignedURL: "https://project.supabase.co/storage/v1/object/public/" + bucketID + "/" + filePath,
	}
}

func TestSupabaseImageStoreUpload(t *testing.T) {
	uploader := &fakeUploader{}
	store := &SupabaseImageStore{client: uploader, bucket: "recipes"}

	url, err := store.Upload(context.Background(), "recipe_1.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/recipes/recipe_1.png", url)
	assert.Equal(t, "recipes", uploader.bucket)
	assert.Equal(t, "recipe_1.png", uploader.path)
	assert.Equal(t, "image/png", uploader.contentType)
	assert.Equal(t, "png-bytes", uploader.body)
}
