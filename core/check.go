package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/internal/outwriter"
	"github.com/huangsam/snapguard/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// checkStartMessage opens every check run.
const checkStartMessage = "Checking that none of the reactor project's plugins contain SNAPSHOT dependencies."

// RunSnapshotCheck loads the reactor and computes the verdict without reporting it.
// A nil loader is created from cfg. A nil mgr disables history.
func RunSnapshotCheck(ctx context.Context, cfg *contract.Config, loader contract.ReactorLoader, mgr contract.HistoryManager, log *zap.Logger) (*schema.CheckResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, checkSpanName)
	defer span.End()

	log.Info(checkStartMessage)

	builder := NewCheckResultBuilder(ctx, cfg, loader, mgr, log)
	steps := []func() (*CheckResultBuilder, error){
		builder.ValidatePrerequisites,
		builder.LoadReactor,
		builder.RunCheck,
		builder.BeginHistory,
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
	result := builder.BuildResult().RecordHistory().GetResult()

	span.SetAttributes(
		attribute.String("snapguard.run_id", result.RunID),
		attribute.Bool("snapguard.passed", result.Passed),
		attribute.Int("snapguard.projects", result.TotalProjects),
		attribute.Int("snapguard.violations", result.TotalViolations),
	)
	return result, nil
}

// ExecuteSnapshotCheck runs the check command for release gating.
// It logs the verdict, writes the result in the configured output format and returns
// a *ReleaseBlockedError when any plugin depends on a SNAPSHOT.
func ExecuteSnapshotCheck(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, log *zap.Logger) error {
	result, err := RunSnapshotCheck(ctx, cfg, nil, mgr, log)
	if err != nil {
		return err
	}

	verdict := ReportVerdict(log, result.Projects, !result.Passed)
	if err := outwriter.WriteCheckResult(result, cfg); err != nil {
		return errors.Join(verdict, fmt.Errorf("failed to write check output: %w", err))
	}
	return verdict
}
