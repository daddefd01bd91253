package scoring

import (
	"math"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// Metric names a derived input value for a scoring dimension. The derivation
// is the only per-metric code; thresholds and weights stay in configuration.
type Metric string

const (
	MetricPaybackYears      Metric = "payback_years"       // asking_price / annual_profit
	MetricProfitMarginPct   Metric = "profit_margin_pct"   // annual_profit / annual_revenue
	MetricRecurringSharePct Metric = "recurring_share_pct" // mrr*12 / annual_revenue
	MetricCustomers         Metric = "customers"
	MetricRevenueMultiple   Metric = "revenue_multiple" // asking_price / annual_revenue
	MetricEmployees         Metric = "employees"
)

func (m Metric) valid() bool {
	switch m {
	case MetricPaybackYears, MetricProfitMarginPct, MetricRecurringSharePct,
		MetricCustomers, MetricRevenueMultiple, MetricEmployees:
		return true
	}
	return false
}

// metricValue derives the metric from the listing. ok=false means a required
// field was not disclosed, with reason saying which; the dimension is then
// "not scored" rather than defaulted, so partial disclosures never bias the
// total.
func metricValue(m Metric, l *models.Listing) (value float64, ok bool, reason string) {
	switch m {
	case MetricPaybackYears:
		if l.AskingPrice == nil {
			return 0, false, "asking_price not disclosed"
		}
		if l.AnnualProfit == nil {
			return 0, false, "annual_profit not disclosed"
		}
		if *l.AnnualProfit == 0 {
			// Zero profit never pays back; lands in the open-ended band.
			return math.Inf(1), true, ""
		}
		return float64(*l.AskingPrice) / float64(*l.AnnualProfit), true, ""

	case MetricProfitMarginPct:
		if l.AnnualProfit == nil {
			return 0, false, "annual_profit not disclosed"
		}
		if l.AnnualRevenue == nil {
			return 0, false, "annual_revenue not disclosed"
		}
		if *l.AnnualRevenue == 0 {
			return 0, false, "annual_revenue is zero"
		}
		return 100 * float64(*l.AnnualProfit) / float64(*l.AnnualRevenue), true, ""

	case MetricRecurringSharePct:
		if l.MRR == nil {
			return 0, false, "mrr not disclosed"
		}
		if l.AnnualRevenue == nil {
			return 0, false, "annual_revenue not disclosed"
		}
		if *l.AnnualRevenue == 0 {
			return 0, false, "annual_revenue is zero"
		}
		return 100 * float64(*l.MRR) * 12 / float64(*l.AnnualRevenue), true, ""

	case MetricCustomers:
		if l.CustomerCount == nil {
			return 0, false, "customer_count not disclosed"
		}
		return float64(*l.CustomerCount), true, ""

	case MetricRevenueMultiple:
		if l.AskingPrice == nil {
			return 0, false, "asking_price not disclosed"
		}
		if l.AnnualRevenue == nil {
			return 0, false, "annual_revenue not disclosed"
		}
		if *l.AnnualRevenue == 0 {
			return 0, false, "annual_revenue is zero"
		}
		return float64(*l.AskingPrice) / float64(*l.AnnualRevenue), true, ""

	case MetricEmployees:
		if l.EmployeeCount == nil {
			return 0, false, "employee_count not disclosed"
		}
		return float64(*l.EmployeeCount), true, ""
	}
	return 0, false, "unknown metric"
}

// bandScore finds the score for a metric value. Band lists are validated at
// load time to be strictly increasing with an open-ended tail, so exactly
// one band matches.
func bandScore(bands []Band, value float64) float64 {
	for _, b := range bands {
		if b.UpTo == nil || value < *b.UpTo {
			return b.Score
		}
	}
	// Unreachable with a validated config.
	return bands[len(bands)-1].Score
}

// ScoreDimensions computes every configured sub-score for one listing. The
// returned flags explain each not-scored dimension.
func ScoreDimensions(l *models.Listing, dims []DimensionConfig) (map[string]models.DimensionScore, []string) {
	breakdown := make(map[string]models.DimensionScore, len(dims))
	var flags []string
	for _, d := range dims {
		v, ok, reason := metricValue(d.Metric, l)
		if !ok {
			breakdown[d.Name] = models.DimensionScore{Dimension: d.Name, Scored: false}
			flags = append(flags, d.Name+" not scored: "+reason)
			continue
		}
		breakdown[d.Name] = models.DimensionScore{
			Dimension: d.Name,
			Value:     bandScore(d.Bands, v),
			Scored:    true,
		}
	}
	return breakdown, flags
}
