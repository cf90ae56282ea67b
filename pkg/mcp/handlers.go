package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unity-tools/unity-mcp/pkg/compile"
	"github.com/unity-tools/unity-mcp/pkg/resultutil"
)

// CompileProjectHandler handles compilation requests: trigger the
// editor, wait for it to settle, then read the diagnostics window from
// Editor.log. Failures are reported inside the result object, so the
// payload shape matches the CLI surface.
func CompileProjectHandler(opts UnityMCPOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client := resolveUnityClient(ctx, opts)
		result := compile.Run(ctx, client, opts.Compile)
		return resultutil.NewSuccessResult(result).ToMCPResult()
	}
}

// DynamicToolHandler forwards a tool invocation to the Unity editor as
// the captured command type. The handler never returns a Go error to
// the MCP host: transport failures and editor rejections become error
// results.
func DynamicToolHandler(opts UnityMCPOptions, commandType string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client := resolveUnityClient(ctx, opts)
		if client == nil {
			return mcp.NewToolResultError("Unity connection not available"), nil
		}

		params := map[string]any{}
		if args, ok := req.Params.Arguments.(map[string]any); ok && args != nil {
			params = args
		}

		requestID := uuid.NewString()
		slog.Info("Forwarding command to Unity", "request_id", requestID, "command", commandType)

		result, err := client.SendCommand(ctx, commandType, params)
		if err != nil {
			slog.Error("Unity command failed", "request_id", requestID, "command", commandType, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
		}
		if !result.Success {
			message := result.ErrorMessage
			if message == "" {
				message = "Unknown error"
			}
			slog.Warn("Unity rejected command", "request_id", requestID, "command", commandType, "message", message)
			return mcp.NewToolResultError(message), nil
		}

		message := result.Message
		if message == "" {
			message = "Operation successful"
		}
		return resultutil.NewSuccessResult(DynamicToolOutput{
			Success: true,
			Message: message,
			Data:    result.Data,
		}).ToMCPResult()
	}
}
