package core

import (
	"context"

	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CheckReactor scans every project of the reactor and applies the self exemption.
// It never stops at the first violating project. The returned records follow the
// order of projects, and the flag is true when any record holds a violation.
// A cancelled context aborts the whole check without a partial result.
func (s *Scanner) CheckReactor(ctx context.Context, projects []schema.Project) (bool, []schema.ProjectViolations, error) {
	perProject := make([]schema.ProjectViolations, len(projects))

	scanOne := func(i int) {
		violations := s.ScanProject(ctx, projects[i])
		if s.IntegrationTest && violations.HasKey(s.SelfPlugin) {
			s.logger().Debug("Exempting self plugin",
				zap.String("project", projects[i].String()),
				zap.String("plugin", s.SelfPlugin),
				zap.Int("dependencies", len(violations.Dependencies(s.SelfPlugin))))
		}
		violations = FilterSelf(violations, s.SelfPlugin, s.IntegrationTest)
		perProject[i] = schema.NewProjectViolations(projects[i], violations)
	}

	if s.Workers < 2 || len(projects) < 2 {
		for i := range projects {
			if err := ctx.Err(); err != nil {
				return false, nil, err
			}
			scanOne(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.Workers)
		for i := range projects {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				scanOne(i) // Each worker owns slot i
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return false, nil, err
		}
		if err := ctx.Err(); err != nil {
			return false, nil, err
		}
	}

	hasViolations := false
	for _, p := range perProject {
		hasViolations = hasViolations || !p.Violations.IsEmpty()
	}
	return hasViolations, perProject, nil
}
