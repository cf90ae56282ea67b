package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unity-tools/unity-mcp/pkg/compile"
)

// AllTools returns the statically defined tools. Tools discovered from
// a Unity project at runtime are not included.
func AllTools() []mcp.Tool {
	return []mcp.Tool{
		CreateCompileProjectTool(),
	}
}

// DynamicToolOutput defines the output schema for tools forwarded to
// the Unity editor.
type DynamicToolOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether Unity executed the command successfully"`
	Message string `json:"message" jsonschema:"description=Status message reported by Unity"`
	Data    any    `json:"data,omitempty" jsonschema:"description=Structured payload returned by the command when present"`
}

func CreateCompileProjectTool() mcp.Tool {
	tool := mcp.NewTool("compile_project",
		mcp.WithDescription(`Trigger Unity project compilation and read the compilation results from Editor.log.

This is the most efficient way to get the latest compile errors and warnings of the project.
Returns the diagnostic lines of the newest compilation, or a success message when it compiled cleanly.`),
		mcp.WithOutputSchema[compile.Result](),
	)
	// workaround for tool with no parameter
	// see https://github.com/containers/kubernetes-mcp-server/pull/341/files#diff-8f8a99cac7a7cbb9c14477d40539efa1494b62835603244ba9f10e6be1c7e44c
	tool.InputSchema = mcp.ToolInputSchema{}
	tool.RawInputSchema = []byte(`{"type":"object","properties":{}}`)
	return tool
}
