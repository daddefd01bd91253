package dedup

import (
	"testing"
	"time"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
)

func detector() *ChangeDetector {
	return NewChangeDetector(scoring.ChangeConfig{ScoreEpsilon: 5, StaleAfterRuns: 3})
}

func scoreOf(total float64) *models.ScoreResult {
	return &models.ScoreResult{Total: &total}
}

func gatesOf(checks ...models.GateCheck) *models.GateResult {
	return &models.GateResult{Checks: checks}
}

func resolved(l *models.Listing) Resolution {
	return Resolution{Entity: &models.OpportunityEntity{Canonical: *l}}
}

func TestClassify_NewEntity(t *testing.T) {
	d := detector()
	res := Resolution{IsNew: true, Entity: &models.OpportunityEntity{}}

	if kind := d.Classify(res, PrevState{}, scoreOf(70), nil); kind != models.EventNew {
		t.Fatalf("kind = %s, want NEW", kind)
	}
}

func TestClassify_ReappearedBeatsScoreChange(t *testing.T) {
	d := detector()
	l := listing("acquire", "123", "Tiny SaaS", "SaaS", i64(8_500_000), day0)
	res := resolved(l)
	res.WasStale = true

	prev := PrevState{Snapshot: l, Score: scoreOf(40)}
	if kind := d.Classify(res, prev, scoreOf(80), nil); kind != models.EventReappeared {
		t.Fatalf("kind = %s, want REAPPEARED", kind)
	}
}

func TestClassify_ScoreMovedPastEpsilon(t *testing.T) {
	d := detector()
	l := listing("acquire", "123", "Tiny SaaS", "SaaS", i64(8_500_000), day0)
	prev := PrevState{Snapshot: l, Score: scoreOf(60)}

	cases := []struct {
		name  string
		total float64
		want  models.EventKind
	}{
		{"within epsilon", 64.9, models.EventUnchanged},
		{"exactly epsilon", 65, models.EventUnchanged},
		{"past epsilon up", 65.1, models.EventScoreChanged},
		{"past epsilon down", 54, models.EventScoreChanged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind := d.Classify(resolved(l), prev, scoreOf(tc.total), nil)
			if kind != tc.want {
				t.Errorf("total %.1f: kind = %s, want %s", tc.total, kind, tc.want)
			}
		})
	}
}

func TestClassify_GateFlipIsScoreChange(t *testing.T) {
	d := detector()
	l := listing("acquire", "123", "Tiny SaaS", "SaaS", i64(8_500_000), day0)

	prev := PrevState{
		Snapshot: l,
		Score:    scoreOf(60),
		Gates:    gatesOf(models.GateCheck{Gate: "profitable", Status: models.GatePass}),
	}
	cur := gatesOf(models.GateCheck{Gate: "profitable", Status: models.GateFail})

	if kind := d.Classify(resolved(l), prev, scoreOf(60), cur); kind != models.EventScoreChanged {
		t.Fatalf("kind = %s, want SCORE_CHANGED on gate flip", kind)
	}
}

func TestClassify_DefinedUndefinedTransitions(t *testing.T) {
	d := detector()
	l := listing("acquire", "123", "Tiny SaaS", "SaaS", i64(8_500_000), day0)
	undefined := &models.ScoreResult{}

	prev := PrevState{Snapshot: l, Score: scoreOf(60)}
	if kind := d.Classify(resolved(l), prev, undefined, nil); kind != models.EventScoreChanged {
		t.Fatalf("defined -> undefined: kind = %s, want SCORE_CHANGED", kind)
	}

	prev = PrevState{Snapshot: l, Score: undefined}
	if kind := d.Classify(resolved(l), prev, scoreOf(60), nil); kind != models.EventScoreChanged {
		t.Fatalf("undefined -> defined: kind = %s, want SCORE_CHANGED", kind)
	}
	if kind := d.Classify(resolved(l), prev, undefined, nil); kind != models.EventUnchanged {
		t.Fatalf("undefined -> undefined: kind = %s, want UNCHANGED", kind)
	}
}

func TestClassify_TrackedFieldChanges(t *testing.T) {
	d := detector()
	base := listing("acquire", "123", "Tiny SaaS", "SaaS", i64(8_500_000), day0)
	base.AnnualRevenue = i64(12_000_000)

	cases := []struct {
		name   string
		mutate func(*models.Listing)
		want   models.EventKind
	}{
		{"price drop", func(l *models.Listing) { l.AskingPrice = i64(7_900_000) }, models.EventFieldsChanged},
		{"revenue update", func(l *models.Listing) { l.AnnualRevenue = i64(13_000_000) }, models.EventFieldsChanged},
		{"category recut", func(l *models.Listing) { l.Category = "E-commerce" }, models.EventFieldsChanged},
		{"price learned", func(l *models.Listing) { l.AskingPrice = nil }, models.EventFieldsChanged},
		{"description only", func(l *models.Listing) { l.Description = "now with more words" }, models.EventUnchanged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cur := *base
			tc.mutate(&cur)
			prev := PrevState{Snapshot: base, Score: scoreOf(60)}
			kind := d.Classify(resolved(&cur), prev, scoreOf(61), nil)
			if kind != tc.want {
				t.Errorf("kind = %s, want %s", kind, tc.want)
			}
		})
	}
}

func TestClassify_IdenticalRescrapeIsUnchanged(t *testing.T) {
	d := detector()
	l := listing("acquire", "123", "Tiny SaaS", "SaaS", i64(8_500_000), day0)
	gates := gatesOf(models.GateCheck{Gate: "profitable", Status: models.GatePass})
	score := scoreOf(72.5)

	prev := PrevState{Snapshot: l, Score: score, Gates: gates}
	later := *l
	later.ObservedAt = day0.Add(24 * time.Hour)

	if kind := d.Classify(resolved(&later), prev, score, gates); kind != models.EventUnchanged {
		t.Fatalf("kind = %s, want UNCHANGED for an identical re-scrape", kind)
	}
}

func TestStaleAfterRuns(t *testing.T) {
	if got := detector().StaleAfterRuns(); got != 3 {
		t.Fatalf("StaleAfterRuns = %d, want 3", got)
	}
}
