package repository

import "go-body-inspector/pkg/models"

// categoryEntry is the authored data for one body type
type categoryEntry struct {
	characteristics string
	description     string
	percentage      float64
	styles          []models.Recommendation
}

// Catalog is the static recommendation table. It is built once and never
// mutated; the repository hands out copies.
type Catalog struct {
	categories map[models.BodyType]categoryEntry
}

// DefaultCatalog returns the authored abaya catalog
func DefaultCatalog() *Catalog {
	return &Catalog{categories: map[models.BodyType]categoryEntry{
		models.Hourglass: {
			characteristics: "Balanced bust and hips with a clearly defined waist",
			description:     "Bust and hips are similar in width with a noticeably narrower waist",
			percentage:      8,
			styles: []models.Recommendation{
				{ID: 1, Style: "Fitted", Description: "Fitted abayas that accentuate the waist", Category: models.Hourglass},
				{ID: 2, Style: "Belt-Cinched", Description: "Styles with belts to highlight the waistline", Category: models.Hourglass},
			},
		},
		models.Pear: {
			characteristics: "Hips wider than shoulders with a defined waist",
			description:     "Hips are wider than the bust and shoulders; the waist tapers above them",
			percentage:      20,
			styles: []models.Recommendation{
				{ID: 3, Style: "A-Line", Description: "A-line cuts that flow from the hip", Category: models.Pear},
				{ID: 4, Style: "Empire Waist", Description: "Empire waist styles to draw attention upward", Category: models.Pear},
			},
		},
		models.InvertedTriangle: {
			characteristics: "Broad shoulders with narrower hips",
			description:     "Shoulders and bust are wider than the hips",
			percentage:      12,
			styles: []models.Recommendation{
				{ID: 5, Style: "Flared", Description: "Flared bottom abayas to balance shoulders", Category: models.InvertedTriangle},
				{ID: 6, Style: "Layered", Description: "Layered styles to add volume to lower body", Category: models.InvertedTriangle},
			},
		},
		models.Rectangle: {
			characteristics: "Shoulders, waist and hips of similar width",
			description:     "Little difference between bust, waist and hip widths",
			percentage:      46,
			styles: []models.Recommendation{
				{ID: 7, Style: "Pleated", Description: "Pleated styles to create curves", Category: models.Rectangle},
				{ID: 8, Style: "Draped", Description: "Draped abayas to add dimension", Category: models.Rectangle},
			},
		},
		models.Apple: {
			characteristics: "Fuller midsection with slimmer legs",
			description:     "Waist is close to or wider than the bust and hips",
			percentage:      14,
			styles: []models.Recommendation{
				{ID: 9, Style: "Empire Line", Description: "Empire line cuts to draw attention away from midsection", Category: models.Apple},
				{ID: 10, Style: "Straight Cut", Description: "Straight cuts with flowing fabric", Category: models.Apple},
			},
		},
	}}
}
