// Package contract resolves the authoritative, ordered feature contract of a
// loaded model and records every gap between it and the feature registry.
package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"prognosis/internal/model"
	"prognosis/internal/schema"
)

// DefaultAdverseIndex is the probability column treated as the adverse
// outcome when the model does not expose a label matching the configured one.
// Binary classifiers trained on a 0/1 outcome put "death" in column 1.
const DefaultAdverseIndex = 1

// GapKind classifies a reconciliation gap.
type GapKind string

const (
	GapRegistryOnly  GapKind = "registry_only"  // declared in the registry, unknown to the model
	GapModelOnly     GapKind = "model_only"     // required by the model, missing from the registry
	GapArityMismatch GapKind = "arity_mismatch" // model arity differs from the registry size
)

// Gap is a non-fatal disagreement between registry and model.
type Gap struct {
	Kind    GapKind
	Feature string
	Detail  string
}

func (g Gap) String() string {
	if g.Feature == "" {
		return fmt.Sprintf("%s: %s", g.Kind, g.Detail)
	}
	return fmt.Sprintf("%s: %q %s", g.Kind, g.Feature, g.Detail)
}

// Contract is the explicit input/output agreement with one loaded model.
// It is immutable once resolved.
type Contract struct {
	// RequiredOrder is the positional order the model consumes.
	RequiredOrder []string
	// Verified is true only when the order came from the model itself.
	Verified bool
	// DeclaredCount is the model's declared arity, 0 when undeclared.
	DeclaredCount int
	// Classes holds the model's class labels, nil when not exposed.
	Classes      []string
	AdverseLabel string
	AdverseIndex int
	Gaps         []Gap
	Fingerprint  string

	index map[string]int
}

// Options tunes resolution.
type Options struct {
	// AdverseLabel names the adverse-outcome class, e.g. "death" or "1".
	AdverseLabel string
	Logger       *slog.Logger
}

// ErrStrict is returned by Strict when the contract has gaps.
var ErrStrict = errors.New("model contract does not match feature registry")

// Resolve derives the contract for m. A nil model yields model.ErrModelLoad.
func Resolve(m model.Classifier, reg *schema.Registry, opts Options) (*Contract, error) {
	if m == nil {
		return nil, &model.LoadError{Err: errors.New("no model loaded")}
	}
	if reg == nil {
		return nil, errors.New("feature registry is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Contract{AdverseLabel: opts.AdverseLabel}

	if counter, ok := m.(model.FeatureCounter); ok {
		c.DeclaredCount = counter.FeatureCount()
	}

	if namer, ok := m.(model.FeatureNamer); ok {
		names, err := checkDeclared(namer.FeatureNames())
		if err != nil {
			return nil, &model.LoadError{Err: err}
		}
		c.RequiredOrder = names
		c.Verified = true
		declared := make(map[string]struct{}, len(c.RequiredOrder))
		for _, name := range c.RequiredOrder {
			declared[name] = struct{}{}
			if !reg.Has(name) {
				c.Gaps = append(c.Gaps, Gap{Kind: GapModelOnly, Feature: name, Detail: "is required by the model but not defined in the registry"})
			}
		}
		for _, name := range reg.Names() {
			if _, ok := declared[name]; !ok {
				c.Gaps = append(c.Gaps, Gap{Kind: GapRegistryOnly, Feature: name, Detail: "is defined in the registry but not required by the model"})
			}
		}
	} else {
		c.RequiredOrder = reg.Names()
		logger.Warn("model does not declare feature names; using registry order unverified",
			"features", len(c.RequiredOrder),
		)
	}

	if c.DeclaredCount > 0 && c.DeclaredCount != len(c.RequiredOrder) {
		c.Gaps = append(c.Gaps, Gap{
			Kind:   GapArityMismatch,
			Detail: fmt.Sprintf("model expects %d features, contract lists %d", c.DeclaredCount, len(c.RequiredOrder)),
		})
	}

	for _, g := range c.Gaps {
		logger.Warn("feature contract gap",
			"kind", g.Kind,
			"feature", g.Feature,
			"detail", g.Detail,
		)
	}

	if err := c.resolveAdverse(m, logger); err != nil {
		return nil, err
	}

	c.index = make(map[string]int, len(c.RequiredOrder))
	for i, name := range c.RequiredOrder {
		c.index[name] = i
	}
	c.Fingerprint = fingerprint(c)
	return c, nil
}

// checkDeclared rejects declared feature lists that cannot key a vector:
// empty, blank or repeated names.
func checkDeclared(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, errors.New("model declares no feature names")
	}
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("model declares a blank feature name at position %d", i)
		}
		if first, ok := seen[name]; ok {
			return nil, fmt.Errorf("model declares feature %q twice (positions %d and %d)", name, first, i)
		}
		seen[name] = i
	}
	return slices.Clone(names), nil
}

func (c *Contract) resolveAdverse(m model.Classifier, logger *slog.Logger) error {
	c.AdverseIndex = DefaultAdverseIndex
	labeler, ok := m.(model.ClassLabeler)
	if !ok {
		return nil
	}
	c.Classes = labeler.Classes()
	if i := slices.Index(c.Classes, c.AdverseLabel); c.AdverseLabel != "" && i >= 0 {
		c.AdverseIndex = i
		return nil
	}
	if len(c.Classes) != 2 {
		logger.Warn("adverse class label not exposed by a non-binary model; using positional index",
			"adverse_label", c.AdverseLabel,
			"classes", c.Classes,
			"index", DefaultAdverseIndex,
		)
	}
	if c.AdverseIndex >= len(c.Classes) {
		return fmt.Errorf("adverse class index %d out of range for %d classes", c.AdverseIndex, len(c.Classes))
	}
	return nil
}

// Index returns the position of name in RequiredOrder.
func (c *Contract) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Strict fails when the contract is unverified or has any gap. Used to fail
// fast at startup when the deployment demands an exact match.
func (c *Contract) Strict() error {
	var problems []string
	if !c.Verified {
		problems = append(problems, "model does not declare its feature names")
	}
	for _, g := range c.Gaps {
		problems = append(problems, g.String())
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStrict, strings.Join(problems, "; "))
}

func fingerprint(c *Contract) string {
	h := sha256.New()
	for _, name := range c.RequiredOrder {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "adverse=%d", c.AdverseIndex)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
