package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/snapguard/core"
	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
	log     *zap.Logger
}

// checkResponse is the payload of check_snapshot_plugins.
type checkResponse struct {
	Verdict string `json:"verdict"`
	Message string `json:"message,omitempty"`
	*schema.CheckResult
}

func (h *toolHandler) handleCheckSnapshotPlugins(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("reactor_path", ""); p != "" {
		cfg.ReactorPath = p
	}
	if f := request.GetString("reactor_format", ""); f != "" {
		cfg.ReactorFormat = schema.ReactorFormat(f)
	}
	if sp := request.GetString("self_plugin", ""); sp != "" {
		cfg.SelfPlugin = sp
	}
	cfg.IntegrationTest = request.GetBool("integration_test", cfg.IntegrationTest)
	if w := request.GetInt("workers", 0); w > 0 {
		cfg.Workers = w
	}

	if err := contract.RevalidateCheck(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: %v", err)), nil
	}

	result, err := core.RunSnapshotCheck(ctx, cfg, nil, h.mgr, h.log)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	response := checkResponse{
		Verdict:     contract.GetPlainVerdict(result.Passed),
		CheckResult: result,
	}
	if verdict := core.ReportVerdict(h.log, result.Projects, !result.Passed); verdict != nil {
		response.Message = verdict.Error()
	}
	jsonData, _ := json.MarshalIndent(response, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetHistoryStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil {
		return mcp.NewToolResultError("history is not configured"), nil
	}
	store := h.mgr.GetHistoryStore()
	if store == nil {
		return mcp.NewToolResultError("history is not configured"), nil
	}

	status, err := store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history status: %v", err)), nil
	}
	jsonData, _ := json.MarshalIndent(status, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}
