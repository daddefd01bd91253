package scraper

import (
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input string
		want  *int64
	}{
		{"$54,200", i64(5_420_000)},
		{"$910k", i64(91_000_000)},
		{"$1.2M", i64(120_000_000)},
		{"$98K", i64(9_800_000)},
		{"15000", i64(1_500_000)},
		{"$0", i64(0)},
		{"", nil},
		{"Contact seller", nil},
	}

	for _, tt := range tests {
		got := ParseMoney(tt.input)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseMoney(%q) = %d, want nil", tt.input, *got)
		case tt.want != nil && got == nil:
			t.Errorf("ParseMoney(%q) = nil, want %d", tt.input, *tt.want)
		case tt.want != nil && *got != *tt.want:
			t.Errorf("ParseMoney(%q) = %d, want %d", tt.input, *got, *tt.want)
		}
	}
}

func TestParseMonthDate(t *testing.T) {
	got := ParseMonthDate("January 11, 2026")
	want := time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("ParseMonthDate = %v, want %v", got, want)
	}

	for _, bad := range []string{"Janvier 11, 2026", "January 2026", "January 42, 2026"} {
		if got := ParseMonthDate(bad); got != nil {
			t.Errorf("ParseMonthDate(%q) = %v, want nil", bad, got)
		}
	}
}

func TestExtractListingID(t *testing.T) {
	id := ExtractListingID("https://app.acquire.com/startup/u-55/lst-991?ref=x")
	if id != "lst-991" {
		t.Errorf("ExtractListingID = %q, want lst-991", id)
	}
	if id := ExtractListingID("https://app.acquire.com/pricing"); id != "" {
		t.Errorf("ExtractListingID(pricing) = %q, want empty", id)
	}
}

func i64(v int64) *int64 { return &v }
