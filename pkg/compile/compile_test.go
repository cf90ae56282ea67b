package compile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/unity-tools/unity-mcp/pkg/editorlog"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

// MockedClient is a mock implementation of unity.Client for testing
type MockedClient struct {
	SendCommandFunc func(ctx context.Context, command string, params map[string]any) (unity.CommandResult, error)
}

func (m *MockedClient) SendCommand(ctx context.Context, command string, params map[string]any) (unity.CommandResult, error) {
	if m.SendCommandFunc != nil {
		return m.SendCommandFunc(ctx, command, params)
	}
	return unity.CommandResult{Success: true}, nil
}

// Ensure MockedClient implements unity.Client at compile time
var _ unity.Client = (*MockedClient)(nil)

const sampleLog = `Start importing assets
EditorCompilation:InvokeCompilationStarted
Building player scripts
# Output
Assets/Scripts/A.cs(10,5): error CS1002: ; expected
Assets/Scripts/B.cs(3,1): error CS0246: type not found
* Tundra build success (0.31 seconds)
Refresh completed
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Editor.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}
	return path
}

func TestRun_SkipTriggerReadsExistingLog(t *testing.T) {
	opts := Options{
		SkipTrigger: true,
		LogPath:     writeLog(t, sampleLog),
	}

	result := Run(context.Background(), nil, opts)
	if !result.Success {
		t.Fatalf("expected success, got failure: %s", result.Message)
	}

	want := []string{
		"Assets/Scripts/A.cs(10,5): error CS1002: ; expected",
		"Assets/Scripts/B.cs(3,1): error CS0246: type not found",
	}
	if !reflect.DeepEqual(result.CompilationLogs, want) {
		t.Errorf("compilation logs mismatch:\n got %v\nwant %v", result.CompilationLogs, want)
	}
	if !strings.Contains(result.Message, "Successfully read 2 compilation records") {
		t.Errorf("expected record count in message, got %q", result.Message)
	}
}

func TestRun_MissingLogFile(t *testing.T) {
	opts := Options{
		SkipTrigger: true,
		LogPath:     filepath.Join(t.TempDir(), "does-not-exist.log"),
	}

	result := Run(context.Background(), nil, opts)
	if result.Success {
		t.Fatal("expected failure for a missing log file")
	}
	if result.Message != "Unity Editor.log not found" {
		t.Errorf("expected message 'Unity Editor.log not found', got %q", result.Message)
	}
	if result.CompilationLogs == nil || len(result.CompilationLogs) != 0 {
		t.Errorf("expected empty compilation logs, got %v", result.CompilationLogs)
	}
}

func TestRun_CleanBuild(t *testing.T) {
	log := `EditorCompilation:InvokeCompilationStarted
Building player scripts
* Tundra build success (0.18 seconds)
`
	opts := Options{SkipTrigger: true, LogPath: writeLog(t, log)}

	result := Run(context.Background(), nil, opts)
	if !result.Success {
		t.Fatalf("expected a clean build to succeed, got: %s", result.Message)
	}
	if !strings.Contains(result.Message, "No errors found in this compilation") {
		t.Errorf("expected clean-build message, got %q", result.Message)
	}
	if len(result.CompilationLogs) != 0 {
		t.Errorf("expected no compilation logs, got %v", result.CompilationLogs)
	}
}

func TestRun_MissingStartMarker(t *testing.T) {
	log := `just some unrelated editor output
* Tundra build success (0.18 seconds)
`
	opts := Options{SkipTrigger: true, LogPath: writeLog(t, log)}

	result := Run(context.Background(), nil, opts)
	if result.Success {
		t.Fatal("expected failure when the start marker is missing")
	}
	if !strings.Contains(result.Message, "start") {
		t.Errorf("expected message to identify the start marker, got %q", result.Message)
	}
	if len(result.CompilationLogs) != 0 {
		t.Errorf("expected empty compilation logs, got %v", result.CompilationLogs)
	}
}

func TestRun_TriggerSendsRefreshCommand(t *testing.T) {
	var sentCommand string
	mockClient := &MockedClient{
		SendCommandFunc: func(ctx context.Context, command string, params map[string]any) (unity.CommandResult, error) {
			sentCommand = command
			return unity.CommandResult{Success: true}, nil
		},
	}

	opts := Options{
		LogPath:        writeLog(t, sampleLog),
		SettleInterval: time.Millisecond,
	}

	result := Run(context.Background(), mockClient, opts)
	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	if sentCommand != "project_files_refresher" {
		t.Errorf("expected 'project_files_refresher' trigger, got %q", sentCommand)
	}
}

func TestRun_TriggerTransportErrorStillReadsLog(t *testing.T) {
	mockClient := &MockedClient{
		SendCommandFunc: func(ctx context.Context, command string, params map[string]any) (unity.CommandResult, error) {
			return unity.CommandResult{}, errors.New("connection refused")
		},
	}

	opts := Options{
		LogPath:        writeLog(t, sampleLog),
		SettleInterval: time.Millisecond,
	}

	result := Run(context.Background(), mockClient, opts)
	if !result.Success {
		t.Fatalf("expected log read to proceed after trigger failure, got: %s", result.Message)
	}
	if len(result.CompilationLogs) != 2 {
		t.Errorf("expected 2 entries, got %v", result.CompilationLogs)
	}
}

func TestRun_TriggerRejectedStillReadsLog(t *testing.T) {
	mockClient := &MockedClient{
		SendCommandFunc: func(ctx context.Context, command string, params map[string]any) (unity.CommandResult, error) {
			return unity.CommandResult{Success: false, ErrorMessage: "editor busy"}, nil
		},
	}

	opts := Options{
		LogPath:        writeLog(t, sampleLog),
		SettleInterval: time.Millisecond,
	}

	result := Run(context.Background(), mockClient, opts)
	if !result.Success {
		t.Fatalf("expected log read to proceed after trigger rejection, got: %s", result.Message)
	}
}

func TestRun_SkipTriggerDoesNotTouchClient(t *testing.T) {
	mockClient := &MockedClient{
		SendCommandFunc: func(ctx context.Context, command string, params map[string]any) (unity.CommandResult, error) {
			t.Error("expected no command to be sent when the trigger is skipped")
			return unity.CommandResult{Success: true}, nil
		},
	}

	opts := Options{
		SkipTrigger: true,
		LogPath:     writeLog(t, sampleLog),
	}
	Run(context.Background(), mockClient, opts)
}

func TestRun_CustomMarkers(t *testing.T) {
	log := `=== begin ===
--- diagnostics ---
widget factory exploded
=== end ===
`
	opts := Options{
		SkipTrigger: true,
		LogPath:     writeLog(t, log),
		Markers: editorlog.Markers{
			Start:   "=== begin ===",
			Section: "=== end ===",
			Output:  "--- diagnostics ---",
		},
	}

	result := Run(context.Background(), nil, opts)
	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	want := []string{"widget factory exploded"}
	if !reflect.DeepEqual(result.CompilationLogs, want) {
		t.Errorf("compilation logs mismatch:\n got %v\nwant %v", result.CompilationLogs, want)
	}
}

func TestResult_JSONFieldNames(t *testing.T) {
	payload, err := json.Marshal(Result{Success: true, Message: "ok", CompilationLogs: []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, field := range []string{`"success"`, `"message"`, `"compilation_logs"`} {
		if !strings.Contains(string(payload), field) {
			t.Errorf("expected field %s in %s", field, payload)
		}
	}
}
