// Package core has the snapshot plugin dependency check: classification, extraction,
// per-project scanning, self exemption, reactor aggregation and the verdict report.
package core

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracerName is the instrumentation scope used for all spans started by this package.
const tracerName = "github.com/huangsam/snapguard/core"

// Span names.
const (
	checkSpanName       = "snapguard.check"
	scanProjectSpanName = "snapguard.scan_project"
)

// Scanner walks reactor projects and collects their SNAPSHOT plugin dependencies.
// The zero value is usable: it logs nothing, traces through the global provider
// and scans sequentially.
type Scanner struct {
	// Log receives the check narration. Nil means no logging.
	Log *zap.Logger

	// Tracer starts the per-project spans. Nil means the global otel tracer.
	Tracer trace.Tracer

	// Workers bounds the number of projects scanned concurrently. Values below 2 scan sequentially.
	Workers int

	// SelfPlugin is the identity of the validator's own plugin.
	SelfPlugin string

	// IntegrationTest enables the self exemption for SelfPlugin.
	IntegrationTest bool
}

// NewScanner creates a Scanner with the given logger and worker bound.
func NewScanner(log *zap.Logger, workers int) *Scanner {
	return &Scanner{Log: log, Workers: workers}
}

// logger returns a non-nil logger.
func (s *Scanner) logger() *zap.Logger {
	if s == nil || s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// tracer returns a non-nil tracer.
func (s *Scanner) tracer() trace.Tracer {
	if s == nil || s.Tracer == nil {
		return otel.Tracer(tracerName)
	}
	return s.Tracer
}
