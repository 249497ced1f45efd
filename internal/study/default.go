package study

import (
	"prognosis/internal/prediction"
	"prognosis/internal/schema"
)

// Default is the built-in gastric cancer three-year mortality study.
func Default() *Study {
	specs := schema.GastricSpecs()
	features := make([]Feature, len(specs))
	for i, s := range specs {
		features[i] = featureFromSpec(s)
	}
	t := prediction.DefaultThresholds()
	return &Study{
		Name:         "Gastric cancer post-operative three-year mortality",
		Version:      "1",
		Outcome:      "death within three years of surgery",
		AdverseLabel: "1",
		Thresholds:   Thresholds{LowMax: t.LowMax, ModerateMax: t.ModerateMax},
		Features:     features,
		Metrics: []Metric{
			{Name: "Accuracy", Value: "85%"},
			{Name: "AUC", Value: "0.88"},
			{Name: "Sensitivity", Value: "82%"},
			{Name: "Specificity", Value: "87%"},
		},
		Cases: []TypicalCase{
			{
				Name: "low risk",
				Inputs: map[string]float64{
					schema.FeatureAge: 55, schema.FeatureTNMStage: 2,
					schema.FeatureTumorDiameter: 2.5, schema.FeatureCEA: 3.2,
				},
				Reported: "92%",
			},
			{
				Name: "moderate risk",
				Inputs: map[string]float64{
					schema.FeatureAge: 68, schema.FeatureTNMStage: 3,
					schema.FeatureTumorDiameter: 4.0, schema.FeatureCEA: 7.5,
				},
				Reported: "58%",
			},
			{
				Name: "high risk",
				Inputs: map[string]float64{
					schema.FeatureAge: 76, schema.FeatureTNMStage: 4,
					schema.FeatureTumorDiameter: 8.5, schema.FeatureCEA: 25.8,
				},
				Reported: "23%",
			},
		},
		Disclaimer: "For clinical reference only. Not a substitute for professional medical judgement.",
	}
}

func featureFromSpec(s schema.FeatureSpec) Feature {
	opts := make([]Option, len(s.Options))
	for i, o := range s.Options {
		opts[i] = Option{Value: o.Value, Label: o.Label}
	}
	return Feature{
		Name:        s.Name,
		Kind:        string(s.Kind),
		Min:         s.Min,
		Max:         s.Max,
		Step:        s.Step,
		Default:     s.Default,
		Options:     opts,
		Unit:        s.Unit,
		Description: s.Description,
	}
}
