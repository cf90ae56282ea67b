package compile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/unity-tools/unity-mcp/pkg/editorlog"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

const (
	// DefaultSettleInterval is how long to wait after a successful
	// trigger before reading the log, giving the editor time to start
	// compiling.
	DefaultSettleInterval = 3 * time.Second

	// triggerCommand asks the editor to refresh project files, which
	// kicks off a script compilation when anything changed.
	triggerCommand = "project_files_refresher"
)

// Options configures a compilation run.
type Options struct {
	// SkipTrigger reads the existing log without asking the editor to
	// recompile first
	SkipTrigger bool
	// SettleInterval overrides the post-trigger wait; zero means
	// DefaultSettleInterval
	SettleInterval time.Duration
	// LogPath overrides the Editor.log location; empty means the
	// environment-resolved default
	LogPath string
	// Markers override the compilation window markers; the zero value
	// means editorlog.DefaultMarkers
	Markers editorlog.Markers
}

func (o Options) settleInterval() time.Duration {
	if o.SettleInterval > 0 {
		return o.SettleInterval
	}
	return DefaultSettleInterval
}

// Result is the outcome of a compilation run.
type Result struct {
	Success         bool     `json:"success" jsonschema:"description=Whether the compilation window was read successfully"`
	Message         string   `json:"message" jsonschema:"description=Human-readable summary of the compilation run"`
	CompilationLogs []string `json:"compilation_logs" jsonschema:"description=Diagnostic lines from the newest compilation, empty when the build was clean"`
}

func failure(message string) Result {
	return Result{Success: false, Message: message, CompilationLogs: []string{}}
}

// Run triggers a compilation unless opts.SkipTrigger is set, waits for
// the editor to settle, and extracts the newest compilation window from
// Editor.log. A nil client skips the trigger and reads whatever the log
// already holds. Failures are reported in the Result rather than as
// errors, so callers at the protocol boundary can forward it as-is.
func Run(ctx context.Context, client unity.Client, opts Options) Result {
	result := run(ctx, client, opts)
	if result.Success {
		runsTotal.WithLabelValues("success").Inc()
		slog.Info("Compilation completed", "message", result.Message)
	} else {
		runsTotal.WithLabelValues("failure").Inc()
		slog.Error("Compilation failed", "message", result.Message)
	}
	return result
}

func run(ctx context.Context, client unity.Client, opts Options) Result {
	if opts.SkipTrigger {
		slog.Info("Skipping compilation trigger, reading existing logs only")
	} else {
		trigger(ctx, client, opts.settleInterval())
	}

	path := opts.LogPath
	if path == "" {
		path = editorlog.ResolveLogPath()
	}
	if _, err := os.Stat(path); err != nil {
		slog.Error("Unity Editor.log not found", "path", path)
		return failure("Unity Editor.log not found")
	}

	lines, err := editorlog.ReadLines(path)
	if err != nil {
		return failure(fmt.Sprintf("Error reading log: %v", err))
	}

	markers := opts.Markers
	if markers == (editorlog.Markers{}) {
		markers = editorlog.DefaultMarkers()
	}

	window, err := editorlog.ExtractWindow(lines, markers)
	if err != nil {
		return failure(err.Error())
	}

	if window.OutputLine == -1 {
		return Result{
			Success: true,
			Message: fmt.Sprintf("No errors found in this compilation. (%s not found before %s (from %d to %d))",
				markers.Output, markers.Section, window.StartLine, window.SectionLine),
			CompilationLogs: []string{},
		}
	}

	entries := window.Entries
	if entries == nil {
		entries = []string{}
	}
	return Result{
		Success:         true,
		Message:         fmt.Sprintf("Successfully read %d compilation records (from %d to %d)", len(entries), window.OutputLine, window.SectionLine),
		CompilationLogs: entries,
	}
}

// trigger is best-effort: a missing connection or a rejected refresh
// only downgrades the run to reading the existing log.
func trigger(ctx context.Context, client unity.Client, settle time.Duration) {
	if client == nil {
		slog.Warn("Unity connection not available, skipping compilation trigger")
		return
	}

	slog.Info("Triggering Unity compilation", "command", triggerCommand)
	result, err := client.SendCommand(ctx, triggerCommand, nil)
	if err != nil {
		slog.Warn("Failed to trigger Unity compilation", "err", err)
		return
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		slog.Warn("Compilation trigger rejected", "err", msg)
		return
	}

	slog.Info("Compilation trigger accepted, waiting for the editor to settle", "interval", settle)
	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
