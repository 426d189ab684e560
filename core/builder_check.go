package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/internal/reactor"
	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	ctx           context.Context
	cfg           *contract.Config
	loader        contract.ReactorLoader
	mgr           contract.HistoryManager
	log           *zap.Logger
	scanner       *Scanner
	runUUID       string
	historyID     int64
	start         time.Time
	projects      []schema.Project
	hasViolations bool
	perProject    []schema.ProjectViolations
	result        *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
// A nil loader is created from the reactor settings of cfg. A nil mgr disables history.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config, loader contract.ReactorLoader, mgr contract.HistoryManager, log *zap.Logger) *CheckResultBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckResultBuilder{
		ctx:     ctx,
		cfg:     cfg,
		loader:  loader,
		mgr:     mgr,
		log:     log,
		runUUID: uuid.NewString(),
		start:   time.Now(),
	}
}

// ValidatePrerequisites validates the config and prepares the loader and scanner.
func (b *CheckResultBuilder) ValidatePrerequisites() (*CheckResultBuilder, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("check requires a configuration")
	}
	if b.cfg.IntegrationTest && strings.TrimSpace(b.cfg.SelfPlugin) == "" {
		return nil, fmt.Errorf("integration test mode requires a self plugin identity. Example: snapguard check --integration-test --self-plugin %s", contract.DefaultSelfPlugin("1.0.0"))
	}

	if b.loader == nil {
		if b.cfg.ReactorPath == "" {
			return nil, fmt.Errorf("check requires a reactor path. Example: snapguard check ./my-project")
		}
		loader, err := reactor.NewLoader(b.cfg.ReactorFormat, b.cfg.ReactorPath, b.log)
		if err != nil {
			return nil, err
		}
		b.loader = loader
	}

	b.scanner = &Scanner{
		Log:             b.log,
		Workers:         b.cfg.Workers,
		SelfPlugin:      b.cfg.SelfPlugin,
		IntegrationTest: b.cfg.IntegrationTest,
	}
	return b, nil
}

// LoadReactor reads the reactor projects.
func (b *CheckResultBuilder) LoadReactor() (*CheckResultBuilder, error) {
	projects, err := b.loader.Load(b.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reactor from %q: %w. Verify the build files are readable", b.cfg.ReactorPath, err)
	}
	b.projects = projects
	return b, nil
}

// BeginHistory opens a history run when a store is configured.
// Call it after RunCheck: an aborted check must not open a run.
func (b *CheckResultBuilder) BeginHistory() (*CheckResultBuilder, error) {
	store := b.historyStore()
	if store == nil {
		return b, nil
	}
	id, err := store.BeginRun(b.runUUID, b.start, b.cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to begin history run: %w. Use --history-backend none to disable history", err)
	}
	b.historyID = id
	return b, nil
}

// RunCheck scans the reactor and applies the self exemption.
func (b *CheckResultBuilder) RunCheck() (*CheckResultBuilder, error) {
	hasViolations, perProject, err := b.scanner.CheckReactor(b.ctx, b.projects)
	if err != nil {
		return nil, fmt.Errorf("check aborted: %w", err)
	}
	b.hasViolations = hasViolations
	b.perProject = perProject
	return b, nil
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	totalPlugins := 0
	for _, project := range b.projects {
		totalPlugins += countPlugins(project)
	}
	totalViolations := 0
	for _, p := range b.perProject {
		totalViolations += p.Violations.Len()
	}

	b.result = &schema.CheckResult{
		RunID:           b.runUUID,
		Passed:          !b.hasViolations,
		Projects:        b.perProject,
		TotalProjects:   len(b.projects),
		TotalPlugins:    totalPlugins,
		TotalViolations: totalViolations,
		SelfPlugin:      b.cfg.SelfPlugin,
		IntegrationTest: b.cfg.IntegrationTest,
		ReactorPath:     b.cfg.ReactorPath,
		Duration:        time.Since(b.start),
	}
	return b
}

// RecordHistory stores the verdict and its violations. Failures are only logged.
func (b *CheckResultBuilder) RecordHistory() *CheckResultBuilder {
	store := b.historyStore()
	if store == nil || b.historyID == 0 || b.result == nil {
		return b
	}
	if err := store.RecordViolations(b.historyID, b.result.Rows()); err != nil {
		b.log.Warn("Failed to record check violations", zap.Int64("run_id", b.historyID), zap.Error(err))
	}
	err := store.EndRun(b.historyID, time.Now(), b.result.TotalProjects, b.result.TotalViolations, b.result.Passed)
	if err != nil {
		b.log.Warn("Failed to end history run", zap.Int64("run_id", b.historyID), zap.Error(err))
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}

// historyStore returns the configured store, or nil when history is disabled.
func (b *CheckResultBuilder) historyStore() contract.HistoryStore {
	if b.mgr == nil {
		return nil
	}
	return b.mgr.GetHistoryStore()
}
