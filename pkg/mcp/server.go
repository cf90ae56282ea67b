package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unity-tools/unity-mcp/pkg/compile"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

// UnityMCPOptions contains configuration options for the MCP server
type UnityMCPOptions struct {
	// Conn is the shared connection to the Unity editor bridge. A nil
	// Conn means no bridge was reachable at startup; tool handlers
	// then report the connection as unavailable instead of failing.
	Conn *unity.Connection
	// Compile carries the defaults for compilation runs triggered
	// through the compile_project tool.
	Compile compile.Options
}

const (
	mcpEndpoint            = "/mcp"
	healthEndpoint         = "/health"
	metricsEndpoint        = "/metrics"
	serverName             = "unity-mcp-server"
	serverVersion          = "1.0.0"
	defaultShutdownTimeout = 10 * time.Second

	serverInstructions = `You are connected to a running Unity editor through this MCP server. Use it to inspect and modify the open project, drive editor commands, and compile scripts.

## TOOLS

- **compile_project** triggers a script compilation and returns the error and warning lines from the newest compilation in Editor.log. Call it after every batch of script edits; do not assume an edit compiled cleanly.
- Every other tool is discovered from the connected Unity project at startup and forwards straight to the editor. The inventory varies between projects; the asset_creation_strategy prompt lists what was discovered.

## RULES

1. **Compile after editing scripts** - compile_project is the cheapest way to see the current compile errors and warnings.
2. **Diagnostics cover the newest compilation only** - after fixing errors, run compile_project again for a fresh verdict.
3. **Tool failures are editor answers** - an error result usually means Unity rejected the command (bad parameters, missing asset), not that the server is broken. Adjust the arguments and retry.
4. **If tools report the Unity connection as unavailable** - the editor is closed or the bridge plugin is not loaded; tell the user instead of retrying.`
)

// NewMCPServer assembles the MCP server from the static compilation
// tool, the tools discovered from the Unity project, and the usage
// prompt built from the same discovery result.
func NewMCPServer(opts UnityMCPOptions, descriptors []unity.ToolDescriptor) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(false),
		server.WithInstructions(serverInstructions),
	)

	SetupTools(mcpServer, opts, descriptors)

	mcpServer.AddPrompt(AssetCreationStrategyPrompt(), AssetCreationStrategyHandler(descriptors))

	return mcpServer
}

// SetupTools registers the static compile_project tool and one tool
// per descriptor discovered from the Unity project.
func SetupTools(mcpServer *server.MCPServer, opts UnityMCPOptions, descriptors []unity.ToolDescriptor) {
	compileProjectTool := CreateCompileProjectTool()
	compileProjectHandler := CompileProjectHandler(opts)
	mcpServer.AddTool(compileProjectTool, compileProjectHandler)

	RegisterUnityTools(mcpServer, opts, descriptors)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		slog.Info("Incoming request", "request_id", requestID, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		slog.Debug("Request headers", "request_id", requestID, "headers", r.Header)
		if r.ContentLength > 0 {
			slog.Info("Request content length", "request_id", requestID, "content_length", r.ContentLength)
		}
		next.ServeHTTP(w, r)
	})
}

func Serve(ctx context.Context, mcpServer *server.MCPServer, listenAddr string) error {
	mux := http.NewServeMux()

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: loggingMiddleware(mux),
	}

	streamableHTTPServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStreamableHTTPServer(httpServer),
		server.WithStateLess(true),
	)
	mux.Handle(mcpEndpoint, streamableHTTPServer)

	mux.Handle("/", streamableHTTPServer)

	mux.Handle(metricsEndpoint, promhttp.Handler())

	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "listen_addr", listenAddr, "mcp_endpoint", mcpEndpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		slog.Warn("Received signal, initiating graceful shutdown", "signal", sig)
		cancel()
	case <-ctx.Done():
		slog.Warn("Context cancelled, initiating graceful shutdown")
	case err := <-serverErr:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer shutdownCancel()

	slog.Info("Shutting down HTTP server gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	slog.Info("HTTP server shutdown complete")
	return nil
}
