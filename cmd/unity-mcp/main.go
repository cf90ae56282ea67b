package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/common/promslog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/unity-tools/unity-mcp/pkg/compile"
	"github.com/unity-tools/unity-mcp/pkg/config"
	"github.com/unity-tools/unity-mcp/pkg/mcp"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

const discoveryTimeout = 15 * time.Second

func main() {
	// Parse command line flags
	var listen = flag.String("listen", "", "Listen address for HTTP mode (e.g., :9100, 127.0.0.1:8080)")
	var logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	var configPath = flag.String("config", "", "Path to a TOML settings file (default: $UNITY_MCP_CONFIG)")
	var unityHost = flag.String("unity-host", "", "Unity bridge host (overrides the settings file)")
	var unityPort = flag.Int("unity-port", 0, "Unity bridge port (overrides the settings file)")
	flag.Parse()

	// Configure slog with specified log level
	configureLogging(*logLevel)

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	if *unityHost != "" {
		settings.UnityHost = *unityHost
	}
	if *unityPort != 0 {
		settings.UnityPort = *unityPort
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	conn := unity.NewConnection(settings.UnityAddr()).
		WithTimeouts(settings.DialTimeout(), settings.CommandTimeout())
	defer func() {
		if err := conn.Disconnect(); err != nil {
			slog.Warn("Failed to close Unity connection", "err", err)
		}
	}()

	descriptors := discoverTools(conn)

	opts := mcp.UnityMCPOptions{
		Conn: conn,
		Compile: compile.Options{
			SettleInterval: settings.SettleInterval(),
			LogPath:        settings.EditorLogPath,
		},
	}

	mcpServer := mcp.NewMCPServer(opts, descriptors)

	slog.Info("Starting server", "UnityAddr", settings.UnityAddr(), "tools", len(descriptors))

	// Choose server mode based on flags
	if *listen != "" {
		// HTTP mode
		ctx := context.Background()
		if err := mcp.Serve(ctx, mcpServer, *listen); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	} else {
		// Start server on stdio (default mode)
		stdioServer := server.NewStdioServer(mcpServer)
		if err := stdioServer.Listen(context.Background(), os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}
}

// discoverTools asks the connected Unity project for its tool
// inventory. Discovery is best-effort: when the editor is not running
// the server still starts, with compile_project as the only tool.
func discoverTools(conn *unity.Connection) []unity.ToolDescriptor {
	ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
	defer cancel()

	descriptors, err := unity.DiscoverTools(ctx, conn)
	if err != nil {
		slog.Warn("Unity tool discovery failed, continuing without dynamic tools", "err", err)
		return nil
	}
	return descriptors
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
