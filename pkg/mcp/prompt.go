package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unity-tools/unity-mcp/pkg/unity"
)

// AssetCreationStrategyPrompt defines the prompt that lists the tools
// discovered from the connected Unity project.
func AssetCreationStrategyPrompt() mcp.Prompt {
	return mcp.NewPrompt("asset_creation_strategy",
		mcp.WithPromptDescription("Guide for discovering and using Unity MCP tools effectively."),
	)
}

// AssetCreationStrategyHandler renders the tool inventory from the
// descriptors discovered at startup.
func AssetCreationStrategyHandler(descriptors []unity.ToolDescriptor) func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		toolLines := make([]string, 0, len(descriptors))
		for _, descriptor := range descriptors {
			toolLines = append(toolLines, fmt.Sprintf("- `%s`: %s", descriptor.CommandType, descriptor.Description))
		}

		toolsSection := "No tools discovered. Make sure Unity MCP Bridge is running and connected."
		if len(toolLines) > 0 {
			toolsSection = strings.Join(toolLines, "\n")
		}

		text := fmt.Sprintf(`Available Unity MCP Server Tools:

%s

Tips:
- Create prefabs for reusable GameObjects.
- Always include a camera and main light in your scenes.
- Tools are automatically discovered from your Unity project.
`, toolsSection)

		return mcp.NewGetPromptResult(
			"Unity tool usage guide",
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
			},
		), nil
	}
}
