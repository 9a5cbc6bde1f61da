package engine

import (
	"fmt"
	"math"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
)

// WarmupStrategy names a fixed warm-up ramp preset.
type WarmupStrategy string

const (
	WarmupStandard     WarmupStrategy = "standard"
	WarmupConservative WarmupStrategy = "conservative"
	WarmupMinimal      WarmupStrategy = "minimal"
)

// warmupRamps maps each strategy to its percentage breakpoints, lowest to
// highest intensity. The percentages are the hard contract; rep counts and
// rounding are tunables.
var warmupRamps = map[WarmupStrategy][]float64{
	WarmupStandard:     {0.40, 0.60, 0.80},
	WarmupConservative: {0.30, 0.50, 0.70, 0.85},
	WarmupMinimal:      {0.50, 0.75},
}

// ParseWarmupStrategy validates a strategy name from an external surface.
func ParseWarmupStrategy(s string) (WarmupStrategy, error) {
	switch WarmupStrategy(s) {
	case WarmupStandard, WarmupConservative, WarmupMinimal:
		return WarmupStrategy(s), nil
	}
	return "", fmt.Errorf("unknown warmup strategy %q", s)
}

// CalculateWarmup produces a warm-up ramp for a working weight and rep
// target. Weights scale by the preset percentages and round down to the
// plate increment (never below one increment for a non-zero working
// weight). Reps start above the working rep count and step down toward it
// as intensity rises, never dropping below it.
func CalculateWarmup(workingWeight float64, workingReps int, strategy WarmupStrategy, plateIncrement float64) ([]models.WarmupSet, error) {
	ramp, ok := warmupRamps[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown warmup strategy %q", strategy)
	}
	if plateIncrement <= 0 {
		plateIncrement = StandardDefaults.PlateIncrement
	}

	sets := make([]models.WarmupSet, 0, len(ramp))
	for i, pct := range ramp {
		weight := roundDownToIncrement(workingWeight*pct, plateIncrement)
		if weight < plateIncrement && workingWeight > 0 {
			weight = plateIncrement
		}

		// Extra reps taper off as intensity approaches the working weight.
		extra := (len(ramp) - i) * 4 / len(ramp)
		reps := workingReps + extra
		if reps < workingReps {
			reps = workingReps
		}

		sets = append(sets, models.WarmupSet{
			Weight:     weight,
			Reps:       reps,
			Percentage: pct,
		})
	}
	return sets, nil
}

// WarmupPlan computes a ramp using the engine's configured plate increment.
func (e *Engine) WarmupPlan(workingWeight float64, workingReps int, strategy WarmupStrategy) ([]models.WarmupSet, error) {
	return CalculateWarmup(workingWeight, workingReps, strategy, e.defaults.PlateIncrement)
}

func roundDownToIncrement(weight, increment float64) float64 {
	return math.Floor(weight/increment) * increment
}
