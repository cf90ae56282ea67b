package mcp

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCreateCompileProjectTool(t *testing.T) {
	tool := CreateCompileProjectTool()

	if tool.Name != "compile_project" {
		t.Errorf("unexpected tool name: %q", tool.Name)
	}
	if !strings.Contains(tool.Description, "compilation") {
		t.Errorf("description should mention compilation, got %q", tool.Description)
	}
	if string(tool.RawInputSchema) != `{"type":"object","properties":{}}` {
		t.Errorf("unexpected raw input schema: %s", tool.RawInputSchema)
	}
}

func TestDynamicToolOutput_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(DynamicToolOutput{
		Success: true,
		Message: "Operation successful",
		Data:    map[string]any{"path": "Assets/Scenes/Main.unity"},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"success", "message", "data"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing %q field in %s", key, data)
		}
	}
}

func TestDynamicToolOutput_DataOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(DynamicToolOutput{Success: true, Message: "Operation successful"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"data"`) {
		t.Errorf("data field should be omitted when empty, got %s", data)
	}
}
