package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/unity-tools/unity-mcp/pkg/mcp"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

func main() {
	tools := mcp.AllTools()

	if err := generateMarkdown(tools, "TOOLS.md"); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating TOOLS.md: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ TOOLS.md generated successfully")
	fmt.Printf("  Documented %d static tools:\n", len(tools))
	for i := range tools {
		fmt.Printf("    - %s\n", tools[i].Name)
	}
	fmt.Println("\n💡 Reminder: When adding a new static tool, register it in pkg/mcp/tools.go AllTools()")
}

// exampleDescriptor drives the discovered-tools section: running it
// through the real conversion keeps the documented schema honest.
func exampleDescriptor() unity.ToolDescriptor {
	return unity.ToolDescriptor{
		CommandType: "manage-scene",
		Description: "Open, save, and query scenes in the connected project.",
		Params: []unity.ParamDef{
			{Name: "action", Type: unity.ParamTypeString, Description: "Operation to perform", Required: true},
			{Name: "scene_path", Type: unity.ParamTypeString, Description: "Project-relative scene path", Required: false},
		},
	}
}

type fieldInfo struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// extractFields reads a JSON schema property map into sorted field
// rows, required fields first. Array types render as "item[]" and a
// property without a type constraint renders as "any".
func extractFields(properties map[string]any, required []string) []fieldInfo {
	requiredSet := make(map[string]bool, len(required))
	for _, r := range required {
		requiredSet[r] = true
	}

	var fields []fieldInfo
	for name, prop := range properties {
		f := fieldInfo{
			Name:     name,
			Type:     "any",
			Required: requiredSet[name],
		}
		if propMap, ok := prop.(map[string]any); ok {
			if t, ok := propMap["type"].(string); ok {
				f.Type = t
			}
			if f.Type == "array" {
				if items, ok := propMap["items"].(map[string]any); ok {
					if itemType, ok := items["type"].(string); ok {
						f.Type = itemType + "[]"
					}
				}
			}
			if d, ok := propMap["description"].(string); ok {
				f.Description = d
			}
		}
		fields = append(fields, f)
	}

	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Required != fields[j].Required {
			return fields[i].Required
		}
		return fields[i].Name < fields[j].Name
	})

	return fields
}

// formatTable renders a markdown table with padded columns.
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("|")
	for i, h := range headers {
		sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], h))
	}
	sb.WriteString("\n|")
	for _, w := range widths {
		sb.WriteString(fmt.Sprintf(" :%s |", strings.Repeat("-", w-1)))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString("|")
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], cell))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func fieldRows(fields []fieldInfo, withRequired bool) [][]string {
	var rows [][]string
	for _, f := range fields {
		row := []string{fmt.Sprintf("`%s`", f.Name), fmt.Sprintf("`%s`", f.Type)}
		if withRequired {
			req := ""
			if f.Required {
				req = "yes"
			}
			row = append(row, req)
		}
		rows = append(rows, append(row, f.Description))
	}
	return rows
}

func writeTool(sb *strings.Builder, tool *mcplib.Tool) {
	sb.WriteString(fmt.Sprintf("## `%s`\n\n", tool.Name))

	// First paragraph of the description is the summary, the rest are
	// usage notes
	paragraphs := strings.Split(strings.TrimSpace(tool.Description), "\n\n")
	sb.WriteString(fmt.Sprintf("> %s\n\n", strings.TrimSpace(paragraphs[0])))
	for _, para := range paragraphs[1:] {
		sb.WriteString(fmt.Sprintf("- %s\n", strings.Join(strings.Fields(para), " ")))
	}
	if len(paragraphs) > 1 {
		sb.WriteString("\n")
	}

	params := extractFields(tool.InputSchema.Properties, tool.InputSchema.Required)
	if len(params) == 0 {
		sb.WriteString("**Parameters:** none\n\n")
	} else {
		sb.WriteString("**Parameters:**\n\n")
		sb.WriteString(formatTable(
			[]string{"Parameter", "Type", "Required", "Description"},
			fieldRows(params, true),
		))
		sb.WriteString("\n")
	}

	outputFields := extractFields(tool.OutputSchema.Properties, tool.OutputSchema.Required)
	if len(outputFields) > 0 {
		sb.WriteString("**Output Schema:**\n\n")
		sb.WriteString(formatTable(
			[]string{"Field", "Type", "Description"},
			fieldRows(outputFields, false),
		))
		sb.WriteString("\n")
	}
}

func generateMarkdown(tools []mcplib.Tool, filename string) error {
	var sb strings.Builder

	sb.WriteString("<!-- This file is auto-generated. Do not edit manually. -->\n")
	sb.WriteString("<!-- Run 'go run ./cmd/generate-tools-doc' to regenerate. -->\n\n")

	sb.WriteString("# Available Tools\n\n")
	sb.WriteString("This MCP server exposes two kinds of tools: the static tools below, ")
	sb.WriteString("and tools discovered from the connected Unity project at startup.\n\n")

	for i := range tools {
		writeTool(&sb, &tools[i])
	}

	sb.WriteString("---\n\n")
	sb.WriteString("# Discovered Tools\n\n")
	sb.WriteString("At startup the server asks the Unity editor bridge for its command inventory ")
	sb.WriteString("and registers one tool per command, so the full tool list varies between projects. ")
	sb.WriteString("Command identifiers are normalized to MCP tool names by replacing `-` with `_`; ")
	sb.WriteString("parameters keep the names, types (string, number, boolean), and requiredness the editor reported.\n\n")
	sb.WriteString("Every discovered tool returns the same envelope on success; failures surface ")
	sb.WriteString("as tool errors carrying the editor's message.\n\n")

	example := exampleDescriptor()
	sb.WriteString(fmt.Sprintf("For example, a project advertising a `%s` command registers:\n\n", example.CommandType))
	exampleTool := mcp.DynamicTool(example)
	writeTool(&sb, &exampleTool)

	sb.WriteString("---\n\n")
	sb.WriteString("# Prompts\n\n")
	prompt := mcp.AssetCreationStrategyPrompt()
	sb.WriteString(fmt.Sprintf("## `%s`\n\n", prompt.Name))
	sb.WriteString(fmt.Sprintf("> %s\n\n", prompt.Description))
	sb.WriteString("The prompt content is rendered at request time from the discovered tool inventory.\n")

	return os.WriteFile(filename, []byte(sb.String()), 0o644)
}
