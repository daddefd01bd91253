package models

// GateStatus is the outcome of one gate check. A gate over a field the
// listing did not disclose is UNDETERMINED, not FAIL: incomplete data is
// flagged for manual review, never silently rejected.
type GateStatus string

const (
	GatePass         GateStatus = "PASS"
	GateFail         GateStatus = "FAIL"
	GateUndetermined GateStatus = "UNDETERMINED"
)

// GateCheck is the recorded outcome of a single configured gate.
type GateCheck struct {
	Gate   string     `json:"gate"`
	Status GateStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// GateResult is the total outcome of gate evaluation: every configured gate
// appears exactly once, in configuration order, no short-circuiting.
type GateResult struct {
	Passed bool        `json:"passed"`
	Checks []GateCheck `json:"checks"`
}

// Failures returns the reasons for every FAIL check, in gate order.
// Empty iff Passed.
func (g *GateResult) Failures() []string {
	var out []string
	for _, c := range g.Checks {
		if c.Status == GateFail {
			out = append(out, c.Gate+": "+c.Detail)
		}
	}
	return out
}

// Undetermined returns the names of gates that could not be decided.
func (g *GateResult) Undetermined() []string {
	var out []string
	for _, c := range g.Checks {
		if c.Status == GateUndetermined {
			out = append(out, c.Gate)
		}
	}
	return out
}

// FlippedFrom reports whether any gate outcome differs from a previous
// evaluation. Used by change detection: a gate flip is always notifiable.
func (g *GateResult) FlippedFrom(prev *GateResult) bool {
	if prev == nil {
		return false
	}
	if g.Passed != prev.Passed || len(g.Checks) != len(prev.Checks) {
		return true
	}
	for i, c := range g.Checks {
		if prev.Checks[i].Gate != c.Gate || prev.Checks[i].Status != c.Status {
			return true
		}
	}
	return false
}

// DimensionScore is one sub-score on [0,10]. Scored=false means the inputs
// were not disclosed; it is never collapsed into a numeric value because 0
// means "scored as worst", not "no data".
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	Scored    bool    `json:"scored"`
}

// ScoreResult is the aggregated score of one listing. Total is nil when no
// dimension could be scored at all.
type ScoreResult struct {
	Total             *float64                  `json:"total,omitempty"`
	Breakdown         map[string]DimensionScore `json:"breakdown"`
	MissingDimensions []string                  `json:"missing_dimensions"`
	Flags             []string                  `json:"flags"`
}

// TotalOr returns Total, or fallback when undefined.
func (s *ScoreResult) TotalOr(fallback float64) float64 {
	if s == nil || s.Total == nil {
		return fallback
	}
	return *s.Total
}
