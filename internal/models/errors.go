package models

import "errors"

var (
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotRecipeOwner   = errors.New("only the recipe's author can change it")

	ErrMissingFields    = errors.New("title, description and ingredients are required")
	ErrMissingImage     = errors.New("an image is required")
	ErrUnsupportedImage = errors.New("image must be a jpeg, png, webp, gif or heic file")
	ErrInvalidRating    = errors.New("rating must be a whole number between 1 and 5")

	ErrStorageUnavailable = errors.New("image storage is not configured")
)
