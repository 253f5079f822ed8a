package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/undergrid/recall/internal/gateway"
)

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text must not be blank"), nil
	}

	reply := s.asker.Submit(ctx, text)
	return mcp.NewToolResultText(reply), nil
}

func (s *Server) handleListSessions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.lister.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing snapshots: %v", err)), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("No saved sessions."), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) handleHostStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := gateway.CollectHost(s.startedAt)
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("collecting host status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleTranslate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target := req.GetString("target", "")

	res, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("translation failed: %v", err)), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}
