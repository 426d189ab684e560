// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names.
const (
	checkToolName         = "check_snapshot_plugins"
	historyStatusToolName = "get_check_history_status"
)

// NewMCPServer initializes and configures the snapguard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, log *zap.Logger) *server.MCPServer {
	if log == nil {
		log = zap.NewNop()
	}
	s := server.NewMCPServer(
		"Snapguard Release Check Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		log:     log,
	}

	// --- 1. Tool: check_snapshot_plugins ---
	s.AddTool(mcp.NewTool(checkToolName,
		mcp.WithDescription("Check that no build plugin of a Maven reactor depends on a SNAPSHOT artifact."),
		mcp.WithString("reactor_path", mcp.Description("Path to the root pom.xml, its directory, or a reactor descriptor (defaults to the configured path).")),
		mcp.WithString("reactor_format", mcp.Description("How the reactor is described. Defaults to 'auto'."), mcp.Enum("auto", "pom", "yaml", "json")),
		mcp.WithBoolean("integration_test", mcp.Description("Exempt the validator's own plugin, for self tests.")),
		mcp.WithString("self_plugin", mcp.Description("Identity groupId:artifactId:version of the validator's own plugin.")),
		mcp.WithNumber("workers", mcp.Description("Number of projects scanned concurrently.")),
	), h.handleCheckSnapshotPlugins)

	// --- 2. Tool: get_check_history_status ---
	s.AddTool(mcp.NewTool(historyStatusToolName,
		mcp.WithDescription("Summarize the recorded history of snapshot checks."),
	), h.handleGetHistoryStatus)

	return s
}

// StartMCPServer starts the snapguard MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, log *zap.Logger) error {
	s := NewMCPServer(baseCfg, mgr, log)
	return server.ServeStdio(s)
}
