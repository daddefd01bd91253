package scoring

import (
	"testing"
	"time"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func defaultGates() GatesConfig {
	return GatesConfig{
		Profitable:         true,
		MinCustomers:       iptr(10),
		AcquisitionCeiling: i64(10_000_000),
		CategoryBlacklist:  []string{"Newsletter", "Content", "Community"},
	}
}

func saasListing() *models.Listing {
	return &models.Listing{
		SourceID:      "acquire",
		ExternalID:    "123",
		URL:           "https://acquire.com/startups/123",
		Title:         "B2B Analytics SaaS",
		Category:      "SaaS",
		AskingPrice:   i64(8_500_000),
		AnnualProfit:  i64(3_000_000),
		CustomerCount: iptr(40),
		ObservedAt:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEvaluateGates_AllConfiguredGatesAppearOnce(t *testing.T) {
	cfg := defaultGates()
	cfg.ExcludedBusinessModels = []string{"dropshipping"}

	result := EvaluateGates(saasListing(), cfg)

	want := []string{
		GateProfitable, GateMinCustomers, GateCategoryBlacklist,
		GateAcquisitionCeiling, GateExcludedBusinessModel,
	}
	if len(result.Checks) != len(want) {
		t.Fatalf("expected %d checks, got %d", len(want), len(result.Checks))
	}
	for i, name := range want {
		if result.Checks[i].Gate != name {
			t.Errorf("check %d: expected gate %s, got %s", i, name, result.Checks[i].Gate)
		}
	}
}

func TestEvaluateGates_QualifyingListingPasses(t *testing.T) {
	result := EvaluateGates(saasListing(), defaultGates())

	if !result.Passed {
		t.Fatalf("expected listing to pass all gates, failures: %v", result.Failures())
	}
	for _, c := range result.Checks {
		if c.Status != models.GatePass {
			t.Errorf("gate %s: expected PASS, got %s (%s)", c.Gate, c.Status, c.Detail)
		}
	}
}

func TestEvaluateGates_BlacklistedCategoryFails(t *testing.T) {
	l := saasListing()
	l.Category = "Newsletter"
	// Strong fundamentals must not rescue a blacklisted category.
	l.AnnualProfit = i64(50_000_000)
	l.CustomerCount = iptr(100_000)

	result := EvaluateGates(l, defaultGates())

	if result.Passed {
		t.Fatal("expected blacklisted category to fail the gate check")
	}
	for _, c := range result.Checks {
		if c.Gate == GateCategoryBlacklist && c.Status != models.GateFail {
			t.Errorf("category_blacklist: expected FAIL, got %s", c.Status)
		}
	}
}

func TestEvaluateGates_UnknownFieldsAreUndeterminedNotFailed(t *testing.T) {
	l := saasListing()
	l.AnnualProfit = nil
	l.CustomerCount = nil
	l.AskingPrice = nil

	result := EvaluateGates(l, defaultGates())

	if !result.Passed {
		t.Fatalf("undetermined gates must not block, failures: %v", result.Failures())
	}
	und := result.Undetermined()
	if len(und) != 3 {
		t.Fatalf("expected 3 undetermined gates, got %v", und)
	}
}

func TestEvaluateGates_NoShortCircuit(t *testing.T) {
	l := saasListing()
	l.AnnualProfit = i64(0)
	l.CustomerCount = iptr(2)
	l.AskingPrice = i64(50_000_000)

	result := EvaluateGates(l, defaultGates())

	if result.Passed {
		t.Fatal("expected failure")
	}
	if got := len(result.Failures()); got != 3 {
		t.Errorf("expected all 3 failures recorded, got %d: %v", got, result.Failures())
	}
}

func TestEvaluateGates_CaseInsensitiveBlacklist(t *testing.T) {
	cases := []struct {
		category string
		wantFail bool
	}{
		{"newsletter", true},
		{"NEWSLETTER", true},
		{" Newsletter ", true},
		{"SaaS", false},
		{"Newsletters", false}, // exact match only, not substring
	}
	for _, tc := range cases {
		l := saasListing()
		l.Category = tc.category
		result := EvaluateGates(l, defaultGates())
		if tc.wantFail == result.Passed {
			t.Errorf("category %q: passed=%v, want fail=%v", tc.category, result.Passed, tc.wantFail)
		}
	}
}

func TestEvaluateGates_DisabledGatesAbsent(t *testing.T) {
	cfg := GatesConfig{Profitable: true}
	result := EvaluateGates(saasListing(), cfg)
	if len(result.Checks) != 1 {
		t.Fatalf("expected only the profitable gate, got %d checks", len(result.Checks))
	}
}

func TestGateResult_FlippedFrom(t *testing.T) {
	l := saasListing()
	cfg := defaultGates()
	base := EvaluateGates(l, cfg)

	same := EvaluateGates(l, cfg)
	if same.FlippedFrom(&base) {
		t.Error("identical evaluations must not count as a flip")
	}

	l.AnnualProfit = i64(0)
	changed := EvaluateGates(l, cfg)
	if !changed.FlippedFrom(&base) {
		t.Error("a PASS -> FAIL transition must count as a flip")
	}
}
