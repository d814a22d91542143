// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/statusboard/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
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

// NewHandler builds one stateless MCP adapter with option metadata and optional board tools.
func NewHandler(cfg Config, options common.OptionMetadataReader, boards common.BoardService) (*Handler, error) {
	if options == nil {
		return nil, fmt.Errorf("option metadata service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerOptionMetadataTool(mcpSrv, cfg.ServerName, options)
	if boards != nil {
		registerBoardTools(mcpSrv, cfg.ServerName, boards)
	}

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

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "statusboard"
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

// toolName prefixes one tool with the server name.
func toolName(prefix, name string) string {
	return prefix + "." + name
}

// registerOptionMetadataTool registers the `<server>.option_metadata` tool.
func registerOptionMetadataTool(srv *mcpserver.MCPServer, prefix string, options common.OptionMetadataReader) {
	srv.AddTool(
		mcp.NewTool(
			toolName(prefix, "option_metadata"),
			mcp.WithDescription("Return the ordered options of one option set field, with state codes for status fields."),
			mcp.WithString("entity", mcp.Required(), mcp.Description("Entity logical name")),
			mcp.WithString("field", mcp.Required(), mcp.Description("Option set field logical name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			entity, err := req.RequireString("entity")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			field, err := req.RequireString("field")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			metadata, err := options.OptionMetadata(ctx, common.OptionMetadataRequest{
				Entity: entity,
				Field:  field,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(metadata)
			if err != nil {
				return nil, fmt.Errorf("encode option_metadata result: %w", err)
			}
			return result, nil
		},
	)
}

// registerBoardTools registers board read and move tools.
func registerBoardTools(srv *mcpserver.MCPServer, prefix string, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			toolName(prefix, "board"),
			mcp.WithDescription("Return the board grouped by one option set attribute."),
			mcp.WithString("attribute", mcp.Description("Grouping attribute logical name (defaults to the current one)")),
			mcp.WithString("page", mcp.Description("Move one page before rendering"), mcp.Enum(common.PageNext, common.PagePrevious)),
			mcp.WithBoolean("refresh", mcp.Description("Re-read records before rendering")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			board, err := boards.Board(ctx, common.BoardRequest{
				Attribute: req.GetString("attribute", ""),
				Page:      req.GetString("page", ""),
				Refresh:   req.GetBool("refresh", false),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(board)
			if err != nil {
				return nil, fmt.Errorf("encode board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolName(prefix, "move_card"),
			mcp.WithDescription("Move one record card onto one board column, writing the new option value."),
			mcp.WithString("record_id", mcp.Required(), mcp.Description("Record id of the card")),
			mcp.WithString("target_key", mcp.Required(), mcp.Description("Target column key in <state>;<code> form")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			recordID, err := req.RequireString("record_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			targetKey, err := req.RequireString("target_key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			moved, err := boards.MoveCard(ctx, common.MoveCardRequest{
				RecordID:  recordID,
				TargetKey: targetKey,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(moved)
			if err != nil {
				return nil, fmt.Errorf("encode move_card result: %w", err)
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
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrConflict):
		return mcp.NewToolResultError("conflict: " + err.Error())
	case errors.Is(err, common.ErrRejected):
		return mcp.NewToolResultError("update_rejected: " + err.Error())
	case errors.Is(err, common.ErrInvalidMetadata):
		return mcp.NewToolResultError("invalid_metadata: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
