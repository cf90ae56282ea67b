package unity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ParamType represents the type of a discovered tool parameter
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeInteger ParamType = "integer"
	ParamTypeBoolean ParamType = "boolean"
)

// ParamDef defines a parameter of a tool advertised by the editor
type ParamDef struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// ToolDescriptor describes one tool advertised by the Unity editor.
// CommandType is the editor-side command identifier, e.g. "manage_scene".
type ToolDescriptor struct {
	CommandType string
	Description string
	Params      []ParamDef
}

// DiscoverTools asks the editor bridge which tools it provides and
// parses the returned metadata. Discovery is repeatable: running it
// again yields equivalent descriptors for an unchanged project.
func DiscoverTools(ctx context.Context, client Client) ([]ToolDescriptor, error) {
	result, err := client.SendCommand(ctx, "list_tools", nil)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = result.Message
		}
		return nil, fmt.Errorf("list_tools command failed: %s", msg)
	}

	data, ok := result.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("list_tools returned no tool metadata")
	}
	entries, ok := data["tools"].([]any)
	if !ok {
		return nil, fmt.Errorf("list_tools response has no tools list")
	}

	descriptors := make([]ToolDescriptor, 0, len(entries))
	for _, entry := range entries {
		meta, ok := entry.(map[string]any)
		if !ok {
			slog.Warn("Skipping malformed tool metadata", "entry", entry)
			continue
		}
		descriptor, ok := parseDescriptor(meta)
		if !ok {
			slog.Warn("Skipping tool with missing command type", "metadata", meta)
			continue
		}
		descriptors = append(descriptors, descriptor)
	}
	return descriptors, nil
}

// parseDescriptor reads one tool metadata map. The editor serializes
// fields in PascalCase or camelCase depending on its serializer
// settings, so both spellings are accepted.
func parseDescriptor(meta map[string]any) (ToolDescriptor, bool) {
	commandType := getString(meta, "CommandType", "commandType")
	if commandType == "" {
		return ToolDescriptor{}, false
	}

	descriptor := ToolDescriptor{
		CommandType: commandType,
		Description: getString(meta, "Description", "description"),
	}

	for _, raw := range getList(meta, "Parameters", "parameters") {
		param, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := getString(param, "Name", "name")
		if name == "" {
			name = "unknown"
		}
		descriptor.Params = append(descriptor.Params, ParamDef{
			Name:        name,
			Type:        parseParamType(getString(param, "Type", "type")),
			Description: getString(param, "Description", "description"),
			Required:    getBool(param, true, "Required", "required"),
		})
	}
	return descriptor, true
}

// parseParamType maps the editor's type names onto the supported kinds.
// Unknown types degrade to string rather than failing registration.
func parseParamType(value string) ParamType {
	switch strings.ToLower(value) {
	case "int", "integer":
		return ParamTypeInteger
	case "bool", "boolean":
		return ParamTypeBoolean
	default:
		return ParamTypeString
	}
}

// getString returns the first non-empty string value among the given keys
func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := m[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// getBool returns the first boolean value among the given keys
func getBool(m map[string]any, defaultValue bool, keys ...string) bool {
	for _, key := range keys {
		if value, ok := m[key].(bool); ok {
			return value
		}
	}
	return defaultValue
}

// getList returns the first list value among the given keys
func getList(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if value, ok := m[key].([]any); ok {
			return value
		}
	}
	return nil
}
