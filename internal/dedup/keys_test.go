package dedup

import (
	"testing"
	"time"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
)

func i64(v int64) *int64 { return &v }

func dedupCfg() scoring.DedupConfig {
	return scoring.DedupConfig{
		TitleSimilarity:   0.82,
		PriceTolerancePct: 20,
		PriceBucketCents:  500_000,
	}
}

func TestBuildKeys_Normalization(t *testing.T) {
	l := &models.Listing{
		SourceID:    "microns",
		ExternalID:  "abc-1",
		Title:       "  Tiny   SaaS\tFor Accountants ",
		Category:    " Micro-SaaS ",
		AskingPrice: i64(8_720_000),
		ObservedAt:  time.Now(),
	}

	keys := BuildKeys(l, dedupCfg())

	if keys.Exact != (models.ListingKey{SourceID: "microns", ExternalID: "abc-1"}) {
		t.Errorf("exact key = %v", keys.Exact)
	}
	if keys.Fuzzy.TitleNorm != "tiny saas for accountants" {
		t.Errorf("title norm = %q", keys.Fuzzy.TitleNorm)
	}
	if keys.Fuzzy.CategoryNorm != "micro-saas" {
		t.Errorf("category norm = %q", keys.Fuzzy.CategoryNorm)
	}
	// $87,200 rounds to the nearest $5k bucket: $85,000.
	if keys.Fuzzy.PriceBucket == nil || *keys.Fuzzy.PriceBucket != 8_500_000 {
		t.Errorf("price bucket = %v, want 8500000", keys.Fuzzy.PriceBucket)
	}
}

func TestBuildKeys_UnknownPriceHasNilBucket(t *testing.T) {
	l := &models.Listing{SourceID: "s", ExternalID: "1", Title: "x", ObservedAt: time.Now()}
	keys := BuildKeys(l, dedupCfg())
	if keys.Fuzzy.PriceBucket != nil {
		t.Errorf("price bucket for unknown price = %v, want nil", *keys.Fuzzy.PriceBucket)
	}
}

func TestTitleSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"tiny saas for accountants", "tiny saas for accountants", 1, 1},
		{"tiny saas for accountants", "tiny saas for accountant", 0.8, 1},
		{"newsletter about golf", "b2b analytics platform", 0, 0.1},
		{"", "", 0, 0},
		{"ab", "ab", 1, 1},
		{"ab", "cd", 0, 0},
	}
	for _, tc := range cases {
		got := TitleSimilarity(tc.a, tc.b)
		if got < tc.min || got > tc.max {
			t.Errorf("similarity(%q, %q) = %v, want in [%v,%v]", tc.a, tc.b, got, tc.min, tc.max)
		}
	}
}
