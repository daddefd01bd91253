package dedup

import (
	"strings"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
)

// FuzzySignature is the coarse cross-source fingerprint of a listing. It is
// deliberately blunt: a wrongly merged pair silently hides a real
// opportunity, while a missed duplicate just shows up as two similar cards a
// human can spot. PriceBucket is nil when the price is not disclosed.
type FuzzySignature struct {
	TitleNorm    string
	PriceBucket  *int64
	CategoryNorm string
}

// Keys bundles the exact and fuzzy comparison keys of one listing.
type Keys struct {
	Exact models.ListingKey
	Fuzzy FuzzySignature
}

// BuildKeys derives both dedup keys from a listing.
func BuildKeys(l *models.Listing, cfg scoring.DedupConfig) Keys {
	return Keys{
		Exact: l.Key(),
		Fuzzy: FuzzySignature{
			TitleNorm:    NormalizeTitle(l.Title),
			PriceBucket:  priceBucket(l.AskingPrice, cfg.PriceBucketCents),
			CategoryNorm: NormalizeCategory(l.Category),
		},
	}
}

// NormalizeTitle lower-cases and collapses all whitespace runs to single
// spaces.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// NormalizeCategory trims and lower-cases a category for exact comparison.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// priceBucket rounds a known price to the nearest bucket boundary.
func priceBucket(price *int64, bucket int64) *int64 {
	if price == nil {
		return nil
	}
	b := (*price + bucket/2) / bucket * bucket
	return &b
}
