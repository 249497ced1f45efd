package assessment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"prognosis/internal/reconcile"
)

const casesTimeout = 10 * time.Second

// TypicalCases evaluates the study's reference patients concurrently.
// Inputs a case leaves out take the registry defaults.
func (s *Service) TypicalCases(ctx context.Context) ([]CaseResult, error) {
	if s.loadErr != nil {
		return nil, toDomainError(s.loadErr)
	}
	ctx, span := s.tracer.Start(ctx, "assessment.TypicalCases")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, casesTimeout)
	defer cancel()

	defaults := reconcile.Defaults(s.contract, s.registry)
	results := make([]CaseResult, len(s.study.Cases))

	g, ctx := errgroup.WithContext(ctx)
	for i, tc := range s.study.Cases {
		partial := make(map[string]any, len(tc.Inputs))
		for name, v := range tc.Inputs {
			partial[name] = v
		}
		g.Go(func() error {
			a, err := s.evaluate(ctx, reconcile.Merge(defaults, partial))
			if err != nil {
				return fmt.Errorf("typical case %q: %w", tc.Name, err)
			}
			results[i] = CaseResult{Name: tc.Name, Reported: tc.Reported, Assessment: a}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, toDomainError(err)
	}
	return results, nil
}
