package models

import (
	"fmt"
	"strings"
	"time"
)

// Listing is one scraped business-for-sale record, normalized by the
// source-specific extractor. Money fields are integer minor currency units
// (cents). Optional fields use pointers: nil means the source did not
// disclose the value, which is different from a disclosed zero.
type Listing struct {
	SourceID   string `json:"source_id" db:"source_id"`
	ExternalID string `json:"external_id" db:"external_id"`
	URL        string `json:"url" db:"url"`
	Title      string `json:"title" db:"title"`
	Category   string `json:"category" db:"category"`

	AskingPrice   *int64 `json:"asking_price,omitempty" db:"asking_price"`
	AnnualRevenue *int64 `json:"annual_revenue,omitempty" db:"annual_revenue"`
	MRR           *int64 `json:"mrr,omitempty" db:"mrr"`
	AnnualProfit  *int64 `json:"annual_profit,omitempty" db:"annual_profit"`

	CustomerCount *int `json:"customer_count,omitempty" db:"customer_count"`
	EmployeeCount *int `json:"employee_count,omitempty" db:"employee_count"`

	Description  string  `json:"description" db:"description"`
	SellerReason *string `json:"seller_reason,omitempty" db:"seller_reason"`
	TechStack    *string `json:"tech_stack,omitempty" db:"tech_stack"`

	PostedAt   *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	ObservedAt time.Time  `json:"observed_at" db:"observed_at"`
}

// ListingKey identifies one scrape uniquely across all sources.
type ListingKey struct {
	SourceID   string `json:"source_id"`
	ExternalID string `json:"external_id"`
}

// Key returns the exact dedup key for this listing.
func (l *Listing) Key() ListingKey {
	return ListingKey{SourceID: l.SourceID, ExternalID: l.ExternalID}
}

func (k ListingKey) String() string {
	return k.SourceID + ":" + k.ExternalID
}

// Validate checks structural invariants of an incoming listing. A failing
// listing is rejected from the batch with the reason recorded; it is never
// silently dropped.
func (l *Listing) Validate() error {
	if strings.TrimSpace(l.SourceID) == "" {
		return fmt.Errorf("source_id is required")
	}
	if strings.TrimSpace(l.ExternalID) == "" {
		return fmt.Errorf("external_id is required")
	}
	if l.ObservedAt.IsZero() {
		return fmt.Errorf("observed_at is required")
	}
	for name, v := range map[string]*int64{
		"asking_price":   l.AskingPrice,
		"annual_revenue": l.AnnualRevenue,
		"mrr":            l.MRR,
		"annual_profit":  l.AnnualProfit,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, *v)
		}
	}
	for name, v := range map[string]*int{
		"customer_count": l.CustomerCount,
		"employee_count": l.EmployeeCount,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, *v)
		}
	}
	if l.PostedAt != nil {
		if l.PostedAt.Year() < 1990 {
			return fmt.Errorf("posted_at year %d is implausible", l.PostedAt.Year())
		}
		if l.PostedAt.After(l.ObservedAt.Add(24 * time.Hour)) {
			return fmt.Errorf("posted_at %s is after observed_at %s",
				l.PostedAt.Format(time.RFC3339), l.ObservedAt.Format(time.RFC3339))
		}
	}
	return nil
}

// KnownFieldCount reports how many optional fields carry a value. Used to
// break ties when electing the canonical snapshot of an entity.
func (l *Listing) KnownFieldCount() int {
	n := 0
	if l.Title != "" {
		n++
	}
	if l.Category != "" {
		n++
	}
	if l.Description != "" {
		n++
	}
	for _, p := range []*int64{l.AskingPrice, l.AnnualRevenue, l.MRR, l.AnnualProfit} {
		if p != nil {
			n++
		}
	}
	for _, p := range []*int{l.CustomerCount, l.EmployeeCount} {
		if p != nil {
			n++
		}
	}
	if l.SellerReason != nil {
		n++
	}
	if l.TechStack != nil {
		n++
	}
	if l.PostedAt != nil {
		n++
	}
	return n
}
