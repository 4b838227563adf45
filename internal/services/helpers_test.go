package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipe_app_echo/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedRecipe(t *testing.T, db *gorm.DB, r models.Recipe) models.Recipe {
	t.Helper()
	require.NoError(t, db.Create(&r).Error)
	return r
}

type uploadedImage struct {
	name        string
	contentType string
	body        []byte
}

type fakeImageStore struct {
	mu      sync.Mutex
	uploads []uploadedImage
	err     error
}

func (f *fakeImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, uploadedImage{name: name, contentType: contentType, body: data})
	return "https://cdn.test/recipes/" + name, nil
}

type fakeSink struct {
	mu      sync.Mutex
	put     map[uint]models.Recipe
	removed []uint
}

func newFakeSink() *fakeSink {
	return &fakeSink{put: map[uint]models.Recipe{}}
}

func (f *fakeSink) Put(ctx context.Context, recipe models.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put[recipe.ID] = recipe
	return nil
}

func (f *fakeSink) Remove(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func jpegUpload() *ImageUpload {
	return &ImageUpload{
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Body:        bytes.NewReader([]byte{0xff, 0xd8, 0xff, 0xe0}),
	}
}

var errUploadFailed = errors.New("bucket unreachable")
