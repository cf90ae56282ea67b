package mcp

import (
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unity-tools/unity-mcp/pkg/unity"
)

// ToolRegistry is the part of the MCP server that dynamic registration
// uses. *server.MCPServer implements it.
type ToolRegistry interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// NormalizeToolName converts an editor command identifier into a valid
// MCP tool name.
func NormalizeToolName(commandType string) string {
	return strings.ReplaceAll(commandType, "-", "_")
}

// DynamicTool converts a discovered tool descriptor into an MCP tool
// definition. Parameters keep the names and requiredness the editor
// reported; integer parameters map to the JSON number type.
func DynamicTool(descriptor unity.ToolDescriptor) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(descriptor.Description),
		mcp.WithOutputSchema[DynamicToolOutput](),
	}

	for _, param := range descriptor.Params {
		propOpts := []mcp.PropertyOption{
			mcp.Description(param.Description),
		}
		if param.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch param.Type {
		case unity.ParamTypeInteger:
			opts = append(opts, mcp.WithNumber(param.Name, propOpts...))
		case unity.ParamTypeBoolean:
			opts = append(opts, mcp.WithBoolean(param.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(param.Name, propOpts...))
		}
	}

	tool := mcp.NewTool(NormalizeToolName(descriptor.CommandType), opts...)

	if len(descriptor.Params) == 0 {
		// workaround for tool with no parameter
		// see https://github.com/containers/kubernetes-mcp-server/pull/341/files#diff-8f8a99cac7a7cbb9c14477d40539efa1494b62835603244ba9f10e6be1c7e44c
		tool.InputSchema = mcp.ToolInputSchema{}
		tool.RawInputSchema = []byte(`{"type":"object","properties":{}}`)
	}

	return tool
}

// RegisterUnityTools adds one MCP tool per discovered descriptor.
// Descriptors without a command type are skipped. When two descriptors
// normalize to the same tool name, the later registration wins.
func RegisterUnityTools(registry ToolRegistry, opts UnityMCPOptions, descriptors []unity.ToolDescriptor) {
	slog.Info("Registering Unity tools", "count", len(descriptors))

	seen := make(map[string]bool, len(descriptors))
	for _, descriptor := range descriptors {
		if descriptor.CommandType == "" {
			slog.Warn("Skipping Unity tool without a command type")
			continue
		}

		name := NormalizeToolName(descriptor.CommandType)
		if seen[name] {
			slog.Warn("Duplicate Unity tool name, keeping the newer registration", "tool", name)
		}
		seen[name] = true

		registry.AddTool(DynamicTool(descriptor), DynamicToolHandler(opts, descriptor.CommandType))
		slog.Info("Registered Unity tool", "tool", name, "command", descriptor.CommandType)
	}
}
