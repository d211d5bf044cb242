package repository

import (
	"strings"

	"go-body-inspector/pkg/models"

	"github.com/arbovm/levenshtein"
)

// maxSuggestionDistance bounds how far a typo may be from a known category
const maxSuggestionDistance = 3

// StaticRecommendationRepository serves recommendations from an immutable
// catalog. It is safe for concurrent use.
type StaticRecommendationRepository struct {
	catalog  *Catalog
	fallback []models.Recommendation
}

// NewRecommendationRepository creates a repository over catalog
func NewRecommendationRepository(catalog *Catalog) RecommendationRepository {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	fallback := make([]models.Recommendation, 0, len(models.BodyTypes))
	for _, bt := range models.BodyTypes {
		if entry, ok := catalog.categories[bt]; ok && len(entry.styles) > 0 {
			fallback = append(fallback, entry.styles[0])
		}
	}

	return &StaticRecommendationRepository{
		catalog:  catalog,
		fallback: fallback,
	}
}

// Lookup returns the curated styles for category, or one representative
// style per category when category is unknown
func (r *StaticRecommendationRepository) Lookup(category string) []models.Recommendation {
	if bt, ok := models.ParseBodyType(category); ok {
		if entry, found := r.catalog.categories[bt]; found {
			return append([]models.Recommendation(nil), entry.styles...)
		}
	}
	return append([]models.Recommendation(nil), r.fallback...)
}

// Characteristics returns the descriptive text for category, "" when unknown
func (r *StaticRecommendationRepository) Characteristics(category string) string {
	bt, ok := models.ParseBodyType(category)
	if !ok {
		return ""
	}
	return r.catalog.categories[bt].characteristics
}

// Info returns the static category overview
func (r *StaticRecommendationRepository) Info() map[models.BodyType]models.BodyTypeInfo {
	info := make(map[models.BodyType]models.BodyTypeInfo, len(r.catalog.categories))
	for bt, entry := range r.catalog.categories {
		info[bt] = models.BodyTypeInfo{
			Description: entry.description,
			Percentage:  entry.percentage,
		}
	}
	return info
}

// Suggest returns the known category closest to an unknown input
func (r *StaticRecommendationRepository) Suggest(category string) (models.BodyType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return "", false
	}
	if _, ok := models.ParseBodyType(normalized); ok {
		return "", false
	}

	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	best := models.BodyType("")
	bestDistance := maxSuggestionDistance + 1
	for _, bt := range models.BodyTypes {
		if d := levenshtein.Distance(normalized, string(bt)); d < bestDistance {
			best, bestDistance = bt, d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
