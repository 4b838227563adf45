package services

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const firebaseDownloadHost = "https://firebasestorage.googleapis.com"

// FirebaseImageStore uploads recipe images to the Firebase Storage bucket.
// Objects get a download token so the returned URL works without auth.
type FirebaseImageStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	prefix     string
}

// Compile-time interface check.
var _ ImageStore = (*FirebaseImageStore)(nil)

// NewFirebaseImageStore stores objects under prefix in the named bucket
func NewFirebaseImageStore(bucket *gcs.BucketHandle, bucketName, prefix string) *FirebaseImageStore {
	return &FirebaseImageStore{bucket: bucket, bucketName: bucketName, prefix: prefix}
}

func (s *FirebaseImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	objectName := s.prefix + name
	token := uuid.NewString()

	w := s.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", objectName, err)
	}

	return FirebaseDownloadURL(s.bucketName, objectName, token), nil
}

// FirebaseDownloadURL builds the tokenized public download URL of an object
func FirebaseDownloadURL(bucket, object, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		firebaseDownloadHost, bucket, url.PathEscape(object), url.QueryEscape(token))
}
