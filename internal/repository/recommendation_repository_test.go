package repository

import (
	"sync"
	"testing"

	"go-body-inspector/pkg/models"
)

func TestLookup_KnownCategories(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	for _, bt := range models.BodyTypes {
		recs := repo.Lookup(string(bt))
		if len(recs) != 2 {
			t.Errorf("%s: expected 2 recommendations, got %d", bt, len(recs))
			continue
		}
		for _, rec := range recs {
			if rec.Category != bt {
				t.Errorf("%s: got recommendation tagged %s", bt, rec.Category)
			}
		}
		if recs[0].ID >= recs[1].ID {
			t.Errorf("%s: expected authored order, got ids %d, %d", bt, recs[0].ID, recs[1].ID)
		}
	}

	pear := repo.Lookup("pear")
	if pear[0].Style != "A-Line" || pear[1].Style != "Empire Waist" {
		t.Errorf("Unexpected pear styles: %+v", pear)
	}
}

func TestLookup_Normalizes(t *testing.T) {
	repo := NewRecommendationRepository(nil)

	recs := repo.Lookup("  Hourglass ")
	if len(recs) != 2 || recs[0].Category != models.Hourglass {
		t.Errorf("Expected hourglass recommendations, got %+v", recs)
	}
}

func TestLookup_UnknownCategoryFallback(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	for _, category := range []string{"triangle", "", "spoon"} {
		recs := repo.Lookup(category)
		if len(recs) != len(models.BodyTypes) {
			t.Fatalf("%q: expected %d fallback entries, got %d", category, len(models.BodyTypes), len(recs))
		}
		wantIDs := []int{1, 3, 5, 7, 9}
		for i, rec := range recs {
			if rec.Category != models.BodyTypes[i] {
				t.Errorf("%q: entry %d expected category %s, got %s", category, i, models.BodyTypes[i], rec.Category)
			}
			if rec.ID != wantIDs[i] {
				t.Errorf("%q: entry %d expected id %d, got %d", category, i, wantIDs[i], rec.ID)
			}
		}
		if got := repo.Characteristics(category); got != "" {
			t.Errorf("%q: expected empty characteristics, got %q", category, got)
		}
	}
}

func TestLookup_ReturnsCopies(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	recs := repo.Lookup("apple")
	recs[0].Style = "Changed"

	if repo.Lookup("apple")[0].Style != "Empire Line" {
		t.Error("Expected catalog to be unaffected by caller mutation")
	}

	fallback := repo.Lookup("unknown")
	fallback[0].ID = 99
	if repo.Lookup("unknown")[0].ID != 1 {
		t.Error("Expected fallback set to be unaffected by caller mutation")
	}
}

func TestCharacteristics(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	for _, bt := range models.BodyTypes {
		if repo.Characteristics(string(bt)) == "" {
			t.Errorf("%s: expected characteristics text", bt)
		}
	}
}

func TestInfo(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	info := repo.Info()
	if len(info) != 5 {
		t.Fatalf("Expected 5 categories, got %d", len(info))
	}

	total := 0.0
	for _, bt := range models.BodyTypes {
		entry, ok := info[bt]
		if !ok {
			t.Errorf("Missing info for %s", bt)
			continue
		}
		if entry.Description == "" {
			t.Errorf("%s: expected description", bt)
		}
		total += entry.Percentage
	}
	if total != 100 {
		t.Errorf("Expected population shares to sum to 100, got %f", total)
	}
	if info[models.Rectangle].Percentage != 46 {
		t.Errorf("Expected rectangle share 46, got %f", info[models.Rectangle].Percentage)
	}
}

func TestSuggest(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	tests := []struct {
		input string
		want  models.BodyType
		ok    bool
	}{
		{"hourglas", models.Hourglass, true},
		{"Pearr", models.Pear, true},
		{"inverted triangle", models.InvertedTriangle, true},
		{"rectangel", models.Rectangle, true},
		{"apple", "", false},
		{"", "", false},
		{"completely different", "", false},
	}

	for _, tt := range tests {
		got, ok := repo.Suggest(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Suggest(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRepository_ConcurrentReads(t *testing.T) {
	repo := NewRecommendationRepository(DefaultCatalog())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bt := models.BodyTypes[i%len(models.BodyTypes)]
			if len(repo.Lookup(string(bt))) != 2 {
				t.Errorf("Expected 2 recommendations for %s", bt)
			}
			_ = repo.Info()
			_ = repo.Characteristics(string(bt))
		}(i)
	}
	wg.Wait()
}
