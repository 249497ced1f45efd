package assessment

import (
	"time"

	"prognosis/internal/attribution"
	"prognosis/internal/prediction"
	"prognosis/internal/schema"
	"prognosis/internal/study"
)

// Input echoes one reconciled feature value back to the clinician.
type Input struct {
	Name  string
	Value float64
	Label string // option label for categorical features
	Unit  string
}

// Assessment is the outcome of one evaluation. Attribution is nil when the
// explanation stage failed; AttributionWarning then says why.
type Assessment struct {
	ID                 string
	EvaluatedAt        time.Time
	Inputs             []Input
	Prediction         prediction.Result
	Attribution        *attribution.Result
	AttributionWarning string
	ContractVerified   bool
}

// ModelInfo describes the loaded model and its contract for display.
type ModelInfo struct {
	Available     bool
	Error         string
	Kind          string
	Digest        string
	RequiredOrder []string
	Verified      bool
	DeclaredCount int
	Classes       []string
	AdverseLabel  string
	AdverseIndex  int
	Gaps          []string
	Fingerprint   string
	Thresholds    prediction.Thresholds
	Study         StudyInfo
}

// StudyInfo is the display-only study metadata.
type StudyInfo struct {
	Name       string
	Version    string
	Outcome    string
	Metrics    []study.Metric
	Disclaimer string
}

// CaseResult is one typical case evaluated against the loaded model.
type CaseResult struct {
	Name       string
	Reported   string
	Assessment *Assessment
}

// FormField is a registry spec as the input form renders it.
type FormField struct {
	schema.FeatureSpec
	// Described is false for features the model requires but the study
	// does not describe; those render as bare numeric inputs.
	Described bool
}
