package handler

import (
	"time"

	"prognosis/internal/assessment"
	"prognosis/internal/attribution"
)

// FieldResponse describes one input of the risk form.
type FieldResponse struct {
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	Step        *float64         `json:"step,omitempty"`
	Default     float64          `json:"default"`
	Options     []OptionResponse `json:"options,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Description string           `json:"description,omitempty"`
	Described   bool             `json:"described"`
}

type OptionResponse struct {
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// SchemaResponse is the HTTP response for GET /api/schema.
type SchemaResponse struct {
	Features []FieldResponse `json:"features"`
}

// FromSchema converts form fields to an HTTP response.
func FromSchema(fields []assessment.FormField) *SchemaResponse {
	out := &SchemaResponse{Features: make([]FieldResponse, len(fields))}
	for i, f := range fields {
		fr := FieldResponse{
			Name:        f.Name,
			Kind:        string(f.Kind),
			Default:     f.Default,
			Unit:        f.Unit,
			Description: f.Description,
			Described:   f.Described,
		}
		if len(f.Options) > 0 {
			fr.Options = make([]OptionResponse, len(f.Options))
			for j, o := range f.Options {
				fr.Options[j] = OptionResponse{Value: o.Value, Label: o.Label}
			}
		} else if f.Described {
			fr.Min, fr.Max, fr.Step = ptr(f.Min), ptr(f.Max), ptr(f.Step)
		}
		out.Features[i] = fr
	}
	return out
}

// ModelResponse is the HTTP response for GET /api/model.
type ModelResponse struct {
	Available     bool               `json:"available"`
	Error         string             `json:"error,omitempty"`
	Kind          string             `json:"kind,omitempty"`
	Digest        string             `json:"digest,omitempty"`
	RequiredOrder []string           `json:"required_order,omitempty"`
	Verified      bool               `json:"verified"`
	DeclaredCount int                `json:"declared_count,omitempty"`
	Classes       []string           `json:"classes,omitempty"`
	AdverseLabel  string             `json:"adverse_label,omitempty"`
	AdverseIndex  int                `json:"adverse_index"`
	Gaps          []string           `json:"gaps,omitempty"`
	Fingerprint   string             `json:"fingerprint,omitempty"`
	Thresholds    ThresholdsResponse `json:"thresholds"`
	Study         StudyResponse      `json:"study"`
}

type ThresholdsResponse struct {
	LowMax      float64 `json:"low_max"`
	ModerateMax float64 `json:"moderate_max"`
}

type StudyResponse struct {
	Name       string            `json:"name"`
	Version    string            `json:"version,omitempty"`
	Outcome    string            `json:"outcome,omitempty"`
	Metrics    map[string]string `json:"metrics,omitempty"`
	Disclaimer string            `json:"disclaimer,omitempty"`
}

// FromModelInfo converts model info to an HTTP response.
func FromModelInfo(info assessment.ModelInfo) *ModelResponse {
	resp := &ModelResponse{
		Available:     info.Available,
		Error:         info.Error,
		Kind:          info.Kind,
		Digest:        info.Digest,
		RequiredOrder: info.RequiredOrder,
		Verified:      info.Verified,
		DeclaredCount: info.DeclaredCount,
		Classes:       info.Classes,
		AdverseLabel:  info.AdverseLabel,
		AdverseIndex:  info.AdverseIndex,
		Gaps:          info.Gaps,
		Fingerprint:   info.Fingerprint,
		Thresholds: ThresholdsResponse{
			LowMax:      info.Thresholds.LowMax,
			ModerateMax: info.Thresholds.ModerateMax,
		},
		Study: StudyResponse{
			Name:       info.Study.Name,
			Version:    info.Study.Version,
			Outcome:    info.Study.Outcome,
			Disclaimer: info.Study.Disclaimer,
		},
	}
	if len(info.Study.Metrics) > 0 {
		resp.Study.Metrics = make(map[string]string, len(info.Study.Metrics))
		for _, m := range info.Study.Metrics {
			resp.Study.Metrics[m.Name] = m.Value
		}
	}
	return resp
}

// AssessmentResponse is the HTTP response for POST /api/assessments.
type AssessmentResponse struct {
	ID                  string               `json:"id"`
	EvaluatedAt         time.Time            `json:"evaluated_at"`
	DeathProbability    float64              `json:"death_probability"`
	SurvivalProbability float64              `json:"survival_probability"`
	RiskTier            string               `json:"risk_tier"`
	PredictedClass      string               `json:"predicted_class"`
	ClassProbabilities  []float64            `json:"class_probabilities"`
	Inputs              []InputResponse      `json:"inputs"`
	Attribution         *AttributionResponse `json:"attribution,omitempty"`
	AttributionWarning  string               `json:"attribution_warning,omitempty"`
	ContractVerified    bool                 `json:"contract_verified"`
}

type InputResponse struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// AttributionResponse lists contributions largest first, the order a
// waterfall chart draws them in.
type AttributionResponse struct {
	TargetClass   int                        `json:"target_class"`
	BaseValue     float64                    `json:"base_value"`
	Contributions []attribution.Contribution `json:"contributions"`
}

// FromAssessment converts a domain Assessment to an HTTP response.
func FromAssessment(a *assessment.Assessment) *AssessmentResponse {
	resp := &AssessmentResponse{
		ID:                  a.ID,
		EvaluatedAt:         a.EvaluatedAt,
		DeathProbability:    a.Prediction.DeathProbability,
		SurvivalProbability: a.Prediction.SurvivalProbability,
		RiskTier:            string(a.Prediction.RiskTier),
		PredictedClass:      a.Prediction.PredictedClass,
		ClassProbabilities:  a.Prediction.ClassProbabilities,
		Inputs:              make([]InputResponse, len(a.Inputs)),
		AttributionWarning:  a.AttributionWarning,
		ContractVerified:    a.ContractVerified,
	}
	for i, in := range a.Inputs {
		resp.Inputs[i] = InputResponse{Name: in.Name, Value: in.Value, Label: in.Label, Unit: in.Unit}
	}
	if a.Attribution != nil {
		resp.Attribution = &AttributionResponse{
			TargetClass:   a.Attribution.TargetClass,
			BaseValue:     a.Attribution.BaseValue,
			Contributions: a.Attribution.Ranked(),
		}
	}
	return resp
}

// CaseResponse is one row of GET /api/cases.
type CaseResponse struct {
	Name       string              `json:"name"`
	Reported   string              `json:"reported_survival,omitempty"`
	Assessment *AssessmentResponse `json:"assessment"`
}

type CasesResponse struct {
	Cases []CaseResponse `json:"cases"`
}

// FromCases converts typical case results to an HTTP response.
func FromCases(cases []assessment.CaseResult) *CasesResponse {
	out := &CasesResponse{Cases: make([]CaseResponse, len(cases))}
	for i, c := range cases {
		out.Cases[i] = CaseResponse{
			Name:       c.Name,
			Reported:   c.Reported,
			Assessment: FromAssessment(c.Assessment),
		}
	}
	return out
}

func ptr(f float64) *float64 { return &f }
