package handler

import (
	"strings"

	dErrors "prognosis/pkg/domain-errors"
)

const maxFeatures = 64

// EvaluateRequest is the HTTP request body for POST /api/assessments.
type EvaluateRequest struct {
	Features map[string]any `json:"features"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// Feature names and values are checked by the service against the model
// contract; only the envelope is checked here.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Features) == 0 {
		return dErrors.New(dErrors.CodeValidation, "features is required")
	}
	if len(r.Features) > maxFeatures {
		return dErrors.New(dErrors.CodeValidation, "too many features")
	}
	trimmed := make(map[string]any, len(r.Features))
	for name, v := range r.Features {
		name = strings.TrimSpace(name)
		if name == "" {
			return dErrors.New(dErrors.CodeValidation, "feature names must not be empty")
		}
		trimmed[name] = v
	}
	r.Features = trimmed
	return nil
}
