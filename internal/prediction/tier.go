package prediction

import "fmt"

// Tier is the coarse clinical bucket of an adverse-outcome probability.
type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Thresholds are upper bounds, in percent, of the low and moderate tiers.
// Both bounds are inclusive: p <= LowMax is low, p <= ModerateMax is moderate.
type Thresholds struct {
	LowMax      float64
	ModerateMax float64
}

// DefaultThresholds is the 30/70 split used by the gastric cancer study.
func DefaultThresholds() Thresholds {
	return Thresholds{LowMax: 30, ModerateMax: 70}
}

// Validate checks 0 <= LowMax <= ModerateMax <= 100.
func (t Thresholds) Validate() error {
	if t.LowMax < 0 || t.ModerateMax > 100 || t.LowMax > t.ModerateMax {
		return fmt.Errorf("invalid risk thresholds: low<=%v moderate<=%v", t.LowMax, t.ModerateMax)
	}
	return nil
}

// Tier buckets a probability given in percent.
func (t Thresholds) Tier(percent float64) Tier {
	switch {
	case percent <= t.LowMax:
		return TierLow
	case percent <= t.ModerateMax:
		return TierModerate
	default:
		return TierHigh
	}
}
