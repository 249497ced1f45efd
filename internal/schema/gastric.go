package schema

// Feature names of the gastric cancer post-operative cohort.
const (
	FeatureBloodLoss      = "Intraoperative Blood Loss"
	FeatureCEA            = "CEA"
	FeatureAlbumin        = "Albumin"
	FeatureTNMStage       = "TNM Stage"
	FeatureAge            = "Age"
	FeatureTumorDiameter  = "Max Tumor Diameter"
	FeatureLymphovascular = "Lymphovascular Invasion"
)

// GastricSpecs returns the seven inputs of the three-year mortality form in
// their display order.
func GastricSpecs() []FeatureSpec {
	return []FeatureSpec{
		{
			Name: FeatureBloodLoss, Kind: KindNumerical,
			Min: 0, Max: 800, Step: 0.1, Default: 50,
			Unit: "ml", Description: "Blood loss during surgery",
		},
		{
			Name: FeatureCEA, Kind: KindNumerical,
			Min: 0, Max: 150, Step: 0.1, Default: 8.68,
			Unit: "ng/ml", Description: "Carcinoembryonic antigen level",
		},
		{
			Name: FeatureAlbumin, Kind: KindNumerical,
			Min: 1, Max: 80, Step: 0.1, Default: 38.6,
			Unit: "g/L", Description: "Serum albumin level",
		},
		{
			Name: FeatureTNMStage, Kind: KindCategorical, Default: 2,
			Options: []Option{
				{Value: 1, Label: "Stage I"},
				{Value: 2, Label: "Stage II"},
				{Value: 3, Label: "Stage III"},
				{Value: 4, Label: "Stage IV"},
			},
			Description: "Tumor stage",
		},
		{
			Name: FeatureAge, Kind: KindNumerical,
			Min: 25, Max: 90, Step: 0.1, Default: 76,
			Unit: "years", Description: "Patient age",
		},
		{
			Name: FeatureTumorDiameter, Kind: KindNumerical,
			Min: 0.2, Max: 20, Step: 0.1, Default: 4,
			Unit: "cm", Description: "Largest tumor diameter",
		},
		{
			Name: FeatureLymphovascular, Kind: KindCategorical, Default: 1,
			Options: []Option{
				{Value: 0, Label: "No"},
				{Value: 1, Label: "Yes"},
			},
			Description: "Lymphovascular invasion",
		},
	}
}

// DefaultGastric builds the registry for the built-in gastric cancer study.
func DefaultGastric() *Registry {
	r, err := NewRegistry(GastricSpecs()...)
	if err != nil {
		panic("schema: built-in gastric registry is invalid: " + err.Error())
	}
	return r
}
