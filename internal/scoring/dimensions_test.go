package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

func testDimensions(t *testing.T) []DimensionConfig {
	t.Helper()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("failed to load default config: %v", err)
	}
	return cfg.Dimensions
}

func fullListing() *models.Listing {
	return &models.Listing{
		SourceID:      "acquire",
		ExternalID:    "123",
		Title:         "B2B Analytics SaaS",
		Category:      "SaaS",
		AskingPrice:   i64(8_500_000),
		AnnualRevenue: i64(6_000_000),
		MRR:           i64(450_000),
		AnnualProfit:  i64(3_000_000),
		CustomerCount: iptr(40),
		EmployeeCount: iptr(2),
		ObservedAt:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestScoreDimensions_PaybackBands(t *testing.T) {
	dims := testDimensions(t)
	cases := []struct {
		name   string
		price  int64
		profit int64
		want   float64
	}{
		{"under one year", 8_500_000, 9_000_000, 10},
		{"just under two years", 8_500_000, 4_500_000, 8},
		{"just under three years", 8_500_000, 3_000_000, 6},
		{"five years and up", 8_500_000, 1_000_000, 0},
		{"free listing pays back instantly", 0, 1_000_000, 10},
	}
	for _, tc := range cases {
		l := fullListing()
		l.AskingPrice = i64(tc.price)
		l.AnnualProfit = i64(tc.profit)

		breakdown, _ := ScoreDimensions(l, dims)
		ds := breakdown["payback_period"]
		if !ds.Scored {
			t.Errorf("%s: payback_period should be scored", tc.name)
			continue
		}
		if ds.Value != tc.want {
			t.Errorf("%s: payback_period = %v, want %v", tc.name, ds.Value, tc.want)
		}
	}
}

func TestScoreDimensions_ZeroProfitIsWorstPayback(t *testing.T) {
	l := fullListing()
	l.AnnualProfit = i64(0)

	breakdown, _ := ScoreDimensions(l, testDimensions(t))
	ds := breakdown["payback_period"]
	if !ds.Scored {
		t.Fatal("zero profit is a known value; payback must be scored")
	}
	if ds.Value != 0 {
		t.Errorf("payback with zero profit = %v, want 0 (worst band)", ds.Value)
	}
}

func TestScoreDimensions_UnknownInputsAreNotScored(t *testing.T) {
	l := fullListing()
	l.AskingPrice = nil
	l.MRR = nil
	l.EmployeeCount = nil

	breakdown, flags := ScoreDimensions(l, testDimensions(t))

	for _, name := range []string{"payback_period", "recurring_revenue", "price_to_revenue", "team_lean"} {
		ds, ok := breakdown[name]
		if !ok {
			t.Fatalf("dimension %s missing from breakdown", name)
		}
		if ds.Scored {
			t.Errorf("dimension %s: expected not scored, got value %v", name, ds.Value)
		}
	}
	// Still scorable from the remaining fields.
	for _, name := range []string{"profit_margin", "customer_base"} {
		if !breakdown[name].Scored {
			t.Errorf("dimension %s: expected scored", name)
		}
	}
	if len(flags) != 4 {
		t.Errorf("expected 4 not-scored flags, got %v", flags)
	}
}

func TestScoreDimensions_ZeroRevenueDoesNotDivide(t *testing.T) {
	l := fullListing()
	l.AnnualRevenue = i64(0)

	breakdown, flags := ScoreDimensions(l, testDimensions(t))

	for _, name := range []string{"profit_margin", "recurring_revenue", "price_to_revenue"} {
		if breakdown[name].Scored {
			t.Errorf("dimension %s: must not be scored with zero revenue", name)
		}
	}
	found := false
	for _, f := range flags {
		if strings.Contains(f, "annual_revenue is zero") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a zero-revenue flag, got %v", flags)
	}
}

func TestScoreDimensions_EveryDimensionPresent(t *testing.T) {
	dims := testDimensions(t)
	// Fully unknown listing: every dimension must appear, all not scored.
	l := &models.Listing{SourceID: "s", ExternalID: "1", ObservedAt: time.Now()}

	breakdown, _ := ScoreDimensions(l, dims)
	if len(breakdown) != len(dims) {
		t.Fatalf("expected %d dimensions in breakdown, got %d", len(dims), len(breakdown))
	}
	for name, ds := range breakdown {
		if ds.Scored {
			t.Errorf("dimension %s: expected not scored for empty listing", name)
		}
	}
}

func TestScoreDimensions_HigherIsBetterOrientation(t *testing.T) {
	dims := testDimensions(t)
	small := fullListing()
	small.CustomerCount = iptr(5)
	large := fullListing()
	large.CustomerCount = iptr(50_000)

	bs, _ := ScoreDimensions(small, dims)
	bl, _ := ScoreDimensions(large, dims)
	if bs["customer_base"].Value >= bl["customer_base"].Value {
		t.Errorf("customer_base: %v customers scored %v, %v customers scored %v; more customers must not score lower",
			5, bs["customer_base"].Value, 50_000, bl["customer_base"].Value)
	}
}
