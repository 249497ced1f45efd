package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Artifact kinds understood by the loader.
const (
	KindRandomForest       = "random_forest"
	KindLogisticRegression = "logistic_regression"
)

// artifact is the on-disk JSON form of a trained model. FeatureCount,
// FeatureNames and Classes are optional declarations; when absent the model
// simply does not implement the corresponding interface.
type artifact struct {
	Kind         string    `json:"kind"`
	FeatureCount int       `json:"n_features,omitempty"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Classes      []string  `json:"classes,omitempty"`
	Trees        []tree    `json:"trees,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
}

// Handle is a loaded model plus the metadata needed to identify it.
type Handle struct {
	Classifier Classifier
	Kind       string
	Path       string
	Digest     string // sha256 of the artifact bytes
}

// LoadFile reads and decodes the artifact at path. Every failure is a
// *LoadError matching ErrModelLoad.
func LoadFile(path string) (*Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	h, err := Load(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	h.Path = path
	return h, nil
}

// Load decodes an artifact from raw bytes.
func Load(data []byte) (*Handle, error) {
	var a artifact
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("decode artifact: %w", err)}
	}
	c, err := a.build()
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	sum := sha256.Sum256(data)
	return &Handle{Classifier: c, Kind: a.Kind, Digest: hex.EncodeToString(sum[:])}, nil
}

func (a artifact) build() (Classifier, error) {
	if len(a.FeatureNames) > 0 {
		if a.FeatureCount == 0 {
			a.FeatureCount = len(a.FeatureNames)
		}
		if a.FeatureCount != len(a.FeatureNames) {
			return nil, fmt.Errorf("n_features %d disagrees with %d feature names", a.FeatureCount, len(a.FeatureNames))
		}
		seen := make(map[string]struct{}, len(a.FeatureNames))
		for _, n := range a.FeatureNames {
			if _, dup := seen[n]; dup {
				return nil, fmt.Errorf("duplicate feature name %q", n)
			}
			seen[n] = struct{}{}
		}
	}
	classes := a.Classes
	if len(classes) == 0 {
		classes = []string{"0", "1"}
	}

	var core Classifier
	switch a.Kind {
	case KindRandomForest:
		if a.FeatureCount == 0 {
			return nil, errors.New("random forest artifact must declare n_features")
		}
		f, err := newForest(a.Trees, a.FeatureCount, classes)
		if err != nil {
			return nil, err
		}
		core = f
	case KindLogisticRegression:
		if a.FeatureCount != 0 && a.FeatureCount != len(a.Coefficients) {
			return nil, fmt.Errorf("n_features %d disagrees with %d coefficients", a.FeatureCount, len(a.Coefficients))
		}
		l, err := newLogistic(a.Coefficients, a.Intercept, classes)
		if err != nil {
			return nil, err
		}
		core = l
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}

	base := labeled{Classifier: core, classes: classes}
	switch {
	case len(a.FeatureNames) > 0:
		return named{counted: counted{labeled: base, n: a.FeatureCount}, names: a.FeatureNames}, nil
	case a.FeatureCount > 0:
		return counted{labeled: base, n: a.FeatureCount}, nil
	default:
		return base, nil
	}
}
