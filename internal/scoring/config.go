package scoring

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/dealscout/bizfinder-pipeline/internal/errors"
)

//go:embed config/scoring.yaml
var defaultConfigYAML embed.FS

// EngineConfig is the full configuration consumed by the gate/scoring engine
// and the dedup resolver. It is pure data, loaded once and validated before
// any listing is processed; an invalid config is a fatal startup error.
type EngineConfig struct {
	Gates      GatesConfig       `yaml:"gates"`
	Dimensions []DimensionConfig `yaml:"dimensions"`
	Dedup      DedupConfig       `yaml:"dedup"`
	Change     ChangeConfig      `yaml:"change_detection"`
}

// GatesConfig enumerates the pass/fail gate rules. A nil threshold disables
// that gate entirely; a disabled gate does not appear in results.
type GatesConfig struct {
	Profitable             bool     `yaml:"profitable"`
	MinCustomers           *int     `yaml:"min_customers"`
	AcquisitionCeiling     *int64   `yaml:"acquisition_ceiling"`
	CategoryBlacklist      []string `yaml:"category_blacklist"`
	ExcludedBusinessModels []string `yaml:"excluded_business_models"`
}

// DimensionConfig defines one weighted scoring axis.
type DimensionConfig struct {
	Name        string  `yaml:"name"`
	Metric      Metric  `yaml:"metric"`
	Weight      float64 `yaml:"weight"`
	Orientation string  `yaml:"orientation"`
	Bands       []Band  `yaml:"bands"`
}

// Band maps a half-open metric interval to a score. UpTo is the exclusive
// upper bound; the final band omits it and is open-ended, which makes the
// band list exhaustive by construction.
type Band struct {
	UpTo  *float64 `yaml:"up_to"`
	Score float64  `yaml:"score"`
}

// DedupConfig holds the fuzzy-match thresholds.
type DedupConfig struct {
	TitleSimilarity   float64 `yaml:"title_similarity"`
	PriceTolerancePct float64 `yaml:"price_tolerance_pct"`
	PriceBucketCents  int64   `yaml:"price_bucket_cents"`
}

// ChangeConfig holds change-detection thresholds.
type ChangeConfig struct {
	ScoreEpsilon   float64 `yaml:"score_epsilon"`
	StaleAfterRuns int     `yaml:"stale_after_runs"`
}

const (
	OrientationLowerBetter  = "lower_is_better"
	OrientationHigherBetter = "higher_is_better"
)

// LoadConfig reads engine configuration from path, or the embedded defaults
// when path is empty. The result is already validated.
func LoadConfig(path string) (*EngineConfig, error) {
	var raw []byte
	var err error
	if path == "" {
		raw, err = defaultConfigYAML.ReadFile("config/scoring.yaml")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, apperrors.Configuration("failed to read scoring config", err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, apperrors.Configuration("failed to parse scoring config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole configuration. Band lists must be well-formed
// and exhaustive, weights non-negative with a positive total, thresholds in
// range. Any violation aborts startup.
func (c *EngineConfig) Validate() error {
	if len(c.Dimensions) == 0 {
		return apperrors.Configuration("at least one scoring dimension is required", nil)
	}

	seen := make(map[string]bool, len(c.Dimensions))
	var weightSum float64
	for i := range c.Dimensions {
		d := &c.Dimensions[i]
		if d.Name == "" {
			return apperrors.Configuration(fmt.Sprintf("dimension %d has no name", i), nil)
		}
		if seen[d.Name] {
			return apperrors.Configuration("duplicate dimension name "+d.Name, nil)
		}
		seen[d.Name] = true

		if !d.Metric.valid() {
			return apperrors.Configuration(fmt.Sprintf("dimension %s: unknown metric %q", d.Name, d.Metric), nil)
		}
		if d.Weight < 0 {
			return apperrors.Configuration(fmt.Sprintf("dimension %s: negative weight %v", d.Name, d.Weight), nil)
		}
		weightSum += d.Weight

		if d.Orientation != OrientationLowerBetter && d.Orientation != OrientationHigherBetter {
			return apperrors.Configuration(fmt.Sprintf("dimension %s: orientation must be %s or %s",
				d.Name, OrientationLowerBetter, OrientationHigherBetter), nil)
		}
		if err := validateBands(d); err != nil {
			return err
		}
	}
	if weightSum <= 0 {
		return apperrors.Configuration("dimension weights must sum to a positive total", nil)
	}

	dd := c.Dedup
	if dd.TitleSimilarity <= 0 || dd.TitleSimilarity > 1 {
		return apperrors.Configuration(fmt.Sprintf("dedup.title_similarity %v must be in (0,1]", dd.TitleSimilarity), nil)
	}
	if dd.PriceTolerancePct < 0 {
		return apperrors.Configuration("dedup.price_tolerance_pct must not be negative", nil)
	}
	if dd.PriceBucketCents <= 0 {
		return apperrors.Configuration("dedup.price_bucket_cents must be positive", nil)
	}

	if c.Change.ScoreEpsilon < 0 {
		return apperrors.Configuration("change_detection.score_epsilon must not be negative", nil)
	}
	if c.Change.StaleAfterRuns < 1 {
		return apperrors.Configuration("change_detection.stale_after_runs must be at least 1", nil)
	}
	return nil
}

// validateBands rejects overlapping, gapped, or non-exhaustive band lists at
// load time. Bands are half-open intervals ordered by ascending bound with a
// single open-ended final band, so failing fast here guarantees exactly one
// band matches any metric value.
func validateBands(d *DimensionConfig) error {
	if len(d.Bands) == 0 {
		return apperrors.Configuration("dimension "+d.Name+" has no bands", nil)
	}
	last := len(d.Bands) - 1
	if d.Bands[last].UpTo != nil {
		return apperrors.Configuration("dimension "+d.Name+": final band must be open-ended", nil)
	}
	var prevBound *float64
	for i, b := range d.Bands {
		if i != last && b.UpTo == nil {
			return apperrors.Configuration(fmt.Sprintf("dimension %s: band %d is open-ended but not last", d.Name, i), nil)
		}
		if b.Score < 0 || b.Score > 10 {
			return apperrors.Configuration(fmt.Sprintf("dimension %s: band %d score %v outside [0,10]", d.Name, i, b.Score), nil)
		}
		if b.UpTo != nil {
			if prevBound != nil && *b.UpTo <= *prevBound {
				return apperrors.Configuration(fmt.Sprintf("dimension %s: band bounds must be strictly increasing", d.Name), nil)
			}
			prevBound = b.UpTo
		}
		if i > 0 {
			prev := d.Bands[i-1].Score
			if d.Orientation == OrientationLowerBetter && b.Score > prev {
				return apperrors.Configuration(fmt.Sprintf("dimension %s: scores must not increase for %s", d.Name, OrientationLowerBetter), nil)
			}
			if d.Orientation == OrientationHigherBetter && b.Score < prev {
				return apperrors.Configuration(fmt.Sprintf("dimension %s: scores must not decrease for %s", d.Name, OrientationHigherBetter), nil)
			}
		}
	}
	return nil
}

// DimensionWeights returns name -> weight for the aggregator.
func (c *EngineConfig) DimensionWeights() map[string]float64 {
	w := make(map[string]float64, len(c.Dimensions))
	for _, d := range c.Dimensions {
		w[d.Name] = d.Weight
	}
	return w
}
