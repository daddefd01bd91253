package scoring

import (
	"fmt"
	"strings"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// Gate names, in evaluation order.
const (
	GateProfitable            = "profitable"
	GateMinCustomers          = "min_customers"
	GateCategoryBlacklist     = "category_blacklist"
	GateAcquisitionCeiling    = "acquisition_ceiling"
	GateExcludedBusinessModel = "excluded_business_model"
)

// EvaluateGates runs every configured gate against one listing. Evaluation
// is total: no short-circuit, every gate appears exactly once in the result,
// so a rejected listing shows all of its failure reasons at once. A gate
// whose input field is unknown is UNDETERMINED, which does not block the
// listing but is surfaced downstream for manual review.
func EvaluateGates(l *models.Listing, cfg GatesConfig) models.GateResult {
	var checks []models.GateCheck

	if cfg.Profitable {
		checks = append(checks, checkProfitable(l))
	}
	if cfg.MinCustomers != nil {
		checks = append(checks, checkMinCustomers(l, *cfg.MinCustomers))
	}
	if len(cfg.CategoryBlacklist) > 0 {
		checks = append(checks, checkCategoryBlacklist(l, cfg.CategoryBlacklist))
	}
	if cfg.AcquisitionCeiling != nil {
		checks = append(checks, checkAcquisitionCeiling(l, *cfg.AcquisitionCeiling))
	}
	if len(cfg.ExcludedBusinessModels) > 0 {
		checks = append(checks, checkExcludedBusinessModel(l, cfg.ExcludedBusinessModels))
	}

	passed := true
	for _, c := range checks {
		if c.Status == models.GateFail {
			passed = false
		}
	}
	return models.GateResult{Passed: passed, Checks: checks}
}

func checkProfitable(l *models.Listing) models.GateCheck {
	c := models.GateCheck{Gate: GateProfitable}
	switch {
	case l.AnnualProfit == nil:
		c.Status = models.GateUndetermined
		c.Detail = "annual_profit not disclosed"
	case *l.AnnualProfit > 0:
		c.Status = models.GatePass
	default:
		c.Status = models.GateFail
		c.Detail = "annual_profit is zero"
	}
	return c
}

func checkMinCustomers(l *models.Listing, min int) models.GateCheck {
	c := models.GateCheck{Gate: GateMinCustomers}
	switch {
	case l.CustomerCount == nil:
		c.Status = models.GateUndetermined
		c.Detail = "customer_count not disclosed"
	case *l.CustomerCount >= min:
		c.Status = models.GatePass
	default:
		c.Status = models.GateFail
		c.Detail = fmt.Sprintf("%d customers below minimum %d", *l.CustomerCount, min)
	}
	return c
}

func checkCategoryBlacklist(l *models.Listing, blacklist []string) models.GateCheck {
	c := models.GateCheck{Gate: GateCategoryBlacklist}
	category := strings.ToLower(strings.TrimSpace(l.Category))
	if category == "" {
		c.Status = models.GateUndetermined
		c.Detail = "category not disclosed"
		return c
	}
	for _, b := range blacklist {
		if category == strings.ToLower(strings.TrimSpace(b)) {
			c.Status = models.GateFail
			c.Detail = "category " + l.Category + " is blacklisted"
			return c
		}
	}
	c.Status = models.GatePass
	return c
}

func checkAcquisitionCeiling(l *models.Listing, ceiling int64) models.GateCheck {
	c := models.GateCheck{Gate: GateAcquisitionCeiling}
	switch {
	case l.AskingPrice == nil:
		c.Status = models.GateUndetermined
		c.Detail = "asking_price not disclosed"
	case *l.AskingPrice <= ceiling:
		c.Status = models.GatePass
	default:
		c.Status = models.GateFail
		c.Detail = fmt.Sprintf("asking_price %d above ceiling %d", *l.AskingPrice, ceiling)
	}
	return c
}

func checkExcludedBusinessModel(l *models.Listing, keywords []string) models.GateCheck {
	c := models.GateCheck{Gate: GateExcludedBusinessModel}
	haystack := strings.ToLower(l.Category + " " + l.Description)
	if l.TechStack != nil {
		haystack += " " + strings.ToLower(*l.TechStack)
	}
	if strings.TrimSpace(haystack) == "" {
		c.Status = models.GateUndetermined
		c.Detail = "no category or description to match against"
		return c
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			c.Status = models.GateFail
			c.Detail = "matches excluded business model keyword " + kw
			return c
		}
	}
	c.Status = models.GatePass
	return c
}
