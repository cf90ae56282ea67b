package main

import (
	"strings"
	"testing"

	"github.com/unity-tools/unity-mcp/pkg/compile"
)

func TestPrintText_Failure(t *testing.T) {
	var buf strings.Builder
	printText(&buf, compile.Result{
		Success:         false,
		Message:         "Unity Editor.log not found",
		CompilationLogs: []string{},
	})

	got := buf.String()
	if got != "[COMPILATION FAILED] Unity Editor.log not found\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestPrintText_CleanBuild(t *testing.T) {
	var buf strings.Builder
	printText(&buf, compile.Result{
		Success:         true,
		Message:         "No errors found in this compilation.",
		CompilationLogs: []string{},
	})

	got := buf.String()
	if !strings.Contains(got, "[OK] No errors found in this compilation.") {
		t.Errorf("missing success line: %q", got)
	}
	if !strings.Contains(got, "[LOGS] No compilation errors or warnings") {
		t.Errorf("missing empty-logs line: %q", got)
	}
}

func TestPrintText_NumbersDiagnosticLines(t *testing.T) {
	var buf strings.Builder
	printText(&buf, compile.Result{
		Success: true,
		Message: "Successfully read 2 compilation records (from 4 to 7)",
		CompilationLogs: []string{
			"Assets/Scripts/A.cs(10,5): error CS1002: ; expected",
			"Assets/Scripts/B.cs(3,1): error CS0246: type not found",
		},
	})

	got := buf.String()
	if !strings.Contains(got, "[LOGS] Compilation logs (2 entries):") {
		t.Errorf("missing logs header: %q", got)
	}
	if !strings.Contains(got, "    1. Assets/Scripts/A.cs(10,5): error CS1002: ; expected") {
		t.Errorf("missing first numbered line: %q", got)
	}
	if !strings.Contains(got, "    2. Assets/Scripts/B.cs(3,1): error CS0246: type not found") {
		t.Errorf("missing second numbered line: %q", got)
	}
}

func TestNewRootCmd_Defaults(t *testing.T) {
	cmd := newRootCmd()

	if cmd.Use != "unity-compile" {
		t.Errorf("unexpected command name: %q", cmd.Use)
	}
	for flag, expected := range map[string]string{
		"no-trigger": "false",
		"output":     "text",
		"verbose":    "false",
		"config":     "",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Fatalf("missing flag %q", flag)
		}
		if f.DefValue != expected {
			t.Errorf("flag %q: expected default %q, got %q", flag, expected, f.DefValue)
		}
	}
}
