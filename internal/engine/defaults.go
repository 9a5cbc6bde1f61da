package engine

import "github.com/bnjkhr/GymBo-sub002/internal/models"

// startValues are the resolved starting parameters for one exercise slot.
type startValues struct {
	Weight      float64
	Reps        int
	SetCount    int
	RestSeconds int
}

// resolveStart resolves the starting weight/reps/sets/rest for a template
// exercise with fixed precedence: catalog last-used values beat the
// template's static targets (progressive overload), which beat the
// engine-level defaults. catalog may be nil for exercises missing from the
// catalog.
func resolveStart(catalog *models.CatalogExercise, tpl models.TemplateExercise, d Defaults) startValues {
	v := startValues{
		Weight:      d.Weight,
		Reps:        d.Reps,
		SetCount:    d.SetCount,
		RestSeconds: d.RestSeconds,
	}

	if tpl.TargetWeight != nil {
		v.Weight = *tpl.TargetWeight
	}
	if tpl.TargetReps > 0 {
		v.Reps = tpl.TargetReps
	}
	if tpl.TargetSets > 0 {
		v.SetCount = tpl.TargetSets
	}
	if tpl.RestSeconds > 0 {
		v.RestSeconds = tpl.RestSeconds
	}

	if catalog != nil {
		if catalog.LastUsedWeight != nil {
			v.Weight = *catalog.LastUsedWeight
		}
		if catalog.LastUsedReps != nil && *catalog.LastUsedReps > 0 {
			v.Reps = *catalog.LastUsedReps
		}
		if catalog.LastUsedSetCount != nil && *catalog.LastUsedSetCount > 0 {
			v.SetCount = *catalog.LastUsedSetCount
		}
		if catalog.LastUsedRestSeconds != nil && *catalog.LastUsedRestSeconds > 0 {
			v.RestSeconds = *catalog.LastUsedRestSeconds
		}
	}

	return v
}
