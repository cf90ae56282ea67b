package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/common/promslog"
	"github.com/spf13/cobra"

	"github.com/unity-tools/unity-mcp/pkg/compile"
	"github.com/unity-tools/unity-mcp/pkg/config"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

// errCompilationFailed marks a compilation failure that was already
// printed, so main can exit non-zero without repeating the message.
var errCompilationFailed = errors.New("compilation failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errCompilationFailed) {
			os.Exit(1)
		}
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		noTrigger  bool
		output     string
		verbose    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "unity-compile",
		Short:         "Trigger a Unity script compilation and print the diagnostics from Editor.log",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			configureLogging(level)

			if output != "json" && output != "text" {
				return fmt.Errorf("invalid output format %q (expected json or text)", output)
			}

			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			var client unity.Client
			if !noTrigger {
				conn := unity.NewConnection(settings.UnityAddr()).
					WithTimeouts(settings.DialTimeout(), settings.CommandTimeout())
				defer func() {
					if err := conn.Disconnect(); err != nil {
						slog.Warn("Failed to close Unity connection", "err", err)
					}
				}()
				client = conn
			}

			result := compile.Run(ctx, client, compile.Options{
				SkipTrigger:    noTrigger,
				SettleInterval: settings.SettleInterval(),
				LogPath:        settings.EditorLogPath,
			})

			if ctx.Err() != nil {
				return context.Canceled
			}

			if output == "json" {
				payload, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(payload))
			} else {
				printText(os.Stdout, result)
			}

			if !result.Success {
				return errCompilationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noTrigger, "no-trigger", false, "Read the existing Editor.log without asking Unity to recompile")
	cmd.Flags().StringVar(&output, "output", "text", "Output format: text or json")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a TOML settings file (default: $UNITY_MCP_CONFIG)")

	return cmd
}

func printText(w io.Writer, result compile.Result) {
	if !result.Success {
		fmt.Fprintf(w, "[COMPILATION FAILED] %s\n", result.Message)
		return
	}

	fmt.Fprintf(w, "[OK] %s\n", result.Message)
	if len(result.CompilationLogs) == 0 {
		fmt.Fprintln(w, "[LOGS] No compilation errors or warnings")
		return
	}
	fmt.Fprintf(w, "[LOGS] Compilation logs (%d entries):\n", len(result.CompilationLogs))
	for i, line := range result.CompilationLogs {
		fmt.Fprintf(w, "  %3d. %s\n", i+1, line)
	}
}

// configureLogging sets up the slog logger with the specified log level
func configureLogging(levelStr string) {
	level := promslog.NewLevel()
	err := level.Set(levelStr)
	if err != nil {
		log.Fatal(err.Error())
	}

	format := promslog.NewFormat()
	err = format.Set("logfmt")
	if err != nil {
		log.Fatal(err.Error())
	}

	logger := promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Style:  promslog.GoKitStyle,
	})
	slog.SetDefault(logger)
}
