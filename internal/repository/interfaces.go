package repository

import (
	"context"

	"go-body-inspector/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage downloads the raw bytes behind imageURL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// RecommendationRepository serves the static style catalog
type RecommendationRepository interface {
	// Lookup returns curated styles for a category, or the cross-category
	// fallback set when the category is unknown
	Lookup(category string) []models.Recommendation

	// Characteristics returns descriptive text, "" for unknown categories
	Characteristics(category string) string

	Info() map[models.BodyType]models.BodyTypeInfo

	// Suggest finds the closest known category to a misspelled one
	Suggest(category string) (models.BodyType, bool)
}
