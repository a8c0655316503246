// Package mcpapi provides a stateless MCP streamable-HTTP adapter over synced saves.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/evanschultz/kanban/internal/adapters/server/common"
	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing read-only save tools.
func NewHandler(cfg Config, sync common.SyncService) (*Handler, error) {
	if sync == nil {
		return nil, fmt.Errorf("sync service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerSaveTools(mcpSrv, sync)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "kanban"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerSaveTools registers the `kanban.*` read tools. Every tool takes the
// session token of a logged-in account.
func registerSaveTools(srv *mcpserver.MCPServer, sync common.SyncService) {
	srv.AddTool(
		mcp.NewTool(
			"kanban.list_saves",
			mcp.WithDescription("List the saves synced by one account, oldest first."),
			mcp.WithString("session_token", mcp.Required(), mcp.Description("Session token from login")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			token, err := req.RequireString("session_token")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			saves, err := sync.ListSaves(ctx, token)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"saves": saves,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_saves result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanban.get_save",
			mcp.WithDescription("Return one decoded save with its boards and cards."),
			mcp.WithString("session_token", mcp.Required(), mcp.Description("Session token from login")),
			mcp.WithString("save_id", mcp.Description("Save id (defaults to the newest save)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			token, err := req.RequireString("session_token")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			save, err := sync.LoadWorkspace(ctx, token, strings.TrimSpace(req.GetString("save_id", "")))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.SaveViewFrom(save))
			if err != nil {
				return nil, fmt.Errorf("encode get_save result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanban.list_cards",
			mcp.WithDescription("List the cards of one save, optionally restricted to cards carrying any of the given tags."),
			mcp.WithString("session_token", mcp.Required(), mcp.Description("Session token from login")),
			mcp.WithString("save_id", mcp.Description("Save id (defaults to the newest save)")),
			mcp.WithArray("tags", mcp.Description("Optional tag filter, matched case-insensitively"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			token, err := req.RequireString("session_token")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			boards, err := sync.ListCards(ctx, token, strings.TrimSpace(req.GetString("save_id", "")), req.GetStringSlice("tags", nil))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"boards": common.BoardsFrom(boards),
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_cards result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, app.ErrUnauthorized):
		return mcp.NewToolResultError("unauthorized: " + err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, domain.ErrInputValidation):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
