package core

import (
	"context"
	"fmt"

	"github.com/huangsam/snapguard/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ScanProject merges the violations of all plugin surfaces of a project: its managed
// and direct plugins, then the managed and direct plugins of every profile in declaration order.
// Identical (plugin, dependency) pairs found on several surfaces are kept once.
func (s *Scanner) ScanProject(ctx context.Context, project schema.Project) *schema.ViolationSet {
	_, span := s.tracer().Start(ctx, scanProjectSpanName)
	defer span.End()

	log := s.logger()
	log.Debug(fmt.Sprintf("\tChecking plugin dependencies of reactor project '%s':", project.String()))

	violations := schema.NewViolationSet()
	scanSurfaces(log, violations, project.Build, "")
	for _, profile := range project.Profiles {
		scanSurfaces(log, violations, profile.Build, profile.ID)
	}

	span.SetAttributes(
		attribute.String("snapguard.project", project.String()),
		attribute.Int("snapguard.profiles", len(project.Profiles)),
		attribute.Int("snapguard.violations", violations.Len()),
	)
	return violations
}

// scanSurfaces extracts both surfaces of one build shape into violations.
// An empty profileID means the project's own build.
func scanSurfaces(log *zap.Logger, violations *schema.ViolationSet, surfaces schema.PluginSurfaces, profileID string) {
	if profileID == "" {
		log.Debug("\t\tChecking managed plugins")
	} else {
		log.Debug(fmt.Sprintf("\t\tChecking managed plugins of profile '%s'", profileID))
	}
	violations.Merge(ExtractSurface(surfaces.ManagedPlugins()))

	if profileID == "" {
		log.Debug("\t\tChecking direct plugin references")
	} else {
		log.Debug(fmt.Sprintf("\t\tChecking direct plugin references of profile '%s'", profileID))
	}
	violations.Merge(ExtractSurface(surfaces.DirectPlugins()))
}
