package services

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// objectUploader is the subset of the Supabase storage client used for images
type objectUploader interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// SupabaseImageStore uploads recipe images to a public Supabase Storage bucket
type SupabaseImageStore struct {
	client objectUploader
	bucket string
}

// Compile-time interface check.
var _ ImageStore = (*SupabaseImageStore)(nil)

// NewSupabaseImageStore creates a store authenticated with the service key
func NewSupabaseImageStore(url, serviceKey, bucket string) (*SupabaseImageStore, error) {
	client, err := supa.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseImageStore{client: client.Storage, bucket: bucket}, nil
}

func (s *SupabaseImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	upsert := false
	if _, err := s.client.UploadFile(s.bucket, name, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", name, s.bucket, err)
	}

	return s.client.GetPublicUrl(s.bucket, name).SignedURL, nil
}
