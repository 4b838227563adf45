package services

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipe_app_echo/internal/models"
)

// RecipeSink receives recipe writes after they are committed
type RecipeSink interface {
	Put(ctx context.Context, recipe models.Recipe) error
	Remove(ctx context.Context, id uint) error
}

// RecipeMirror copies recipes into a Firestore collection for clients that
// still read the legacy Firebase store. A nil mirror does nothing.
type RecipeMirror struct {
	client     *firestore.Client
	collection string
	log        *zap.Logger
}

// Compile-time interface check.
var _ RecipeSink = (*RecipeMirror)(nil)

const DefaultMirrorCollection = "recipes"

// NewRecipeMirror creates a mirror writing to collection
func NewRecipeMirror(client *firestore.Client, collection string, log *zap.Logger) *RecipeMirror {
	if collection == "" {
		collection = DefaultMirrorCollection
	}
	return &RecipeMirror{client: client, collection: collection, log: log}
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// mirrorDocument is the Firestore shape of a recipe
func mirrorDocument(r models.Recipe) map[string]interface{} {
	return map[string]interface{}{
		"title":        r.Title,
		"description":  r.Description,
		"ingredients":  r.Ingredients,
		"instructions": r.Instructions,
		"steps":        r.Steps,
		"imageUrl":     r.ImageURL,
		"videoUrl":     r.VideoURL,
		"category":     r.Category,
		"rating":       r.Rating,
		"ratingCount":  r.RatingCount,
		"authorUid":    r.AuthorUID,
		"createdAt":    r.CreatedAt,
		"updatedAt":    r.UpdatedAt,
	}
}

func (m *RecipeMirror) Put(ctx context.Context, recipe models.Recipe) error {
	if m == nil || m.client == nil {
		return nil
	}
	_, err := m.client.Collection(m.collection).Doc(docID(recipe.ID)).Set(ctx, mirrorDocument(recipe))
	if err != nil {
		return fmt.Errorf("mirror recipe %d: %w", recipe.ID, err)
	}
	return nil
}

func (m *RecipeMirror) Remove(ctx context.Context, id uint) error {
	if m == nil || m.client == nil {
		return nil
	}
	if _, err := m.client.Collection(m.collection).Doc(docID(id)).Delete(ctx); err != nil {
		return fmt.Errorf("remove mirrored recipe %d: %w", id, err)
	}
	return nil
}

// Resync writes every recipe to Firestore in batches and returns how many were written
func (m *RecipeMirror) Resync(ctx context.Context, db *gorm.DB) (int, error) {
	if m == nil || m.client == nil {
		return 0, nil
	}

	var recipes []models.Recipe
	if err := db.WithContext(ctx).Order("id asc").Find(&recipes).Error; err != nil {
		return 0, err
	}

	bw := m.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(recipes))
	for _, r := range recipes {
		job, err := bw.Set(m.client.Collection(m.collection).Doc(docID(r.ID)), mirrorDocument(r))
		if err != nil {
			bw.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	written := 0
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			m.log.Warn("Failed to mirror recipe", zap.Uint("recipe_id", recipes[i].ID), zap.Error(err))
			continue
		}
		written++
	}
	return written, nil
}
