//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/unity-tools/unity-mcp/pkg/compile"
	"github.com/unity-tools/unity-mcp/pkg/mcp"
	"github.com/unity-tools/unity-mcp/pkg/unity"
)

const (
	defaultTimeout = 30 * time.Second

	// settleInterval keeps the compile tool fast against the canned
	// Editor.log; nothing rewrites the file during the tests.
	settleInterval = 10 * time.Millisecond
)

// sampleEditorLog holds one completed compilation window with two
// diagnostics, matching what Unity writes after a failed script compile.
const sampleEditorLog = `Start importing assets
EditorCompilation:InvokeCompilationStarted
Building player scripts
# Output
Assets/Scripts/Player.cs(12,9): error CS0103: The name 'speeed' does not exist in the current context
Assets/Scripts/Enemy.cs(44,17): warning CS0219: The variable 'hp' is assigned but its value is never used
* Tundra build success (0.31 seconds)
Refresh completed in 0.5 seconds
`

// TestConfig holds the e2e environment: either an in-process server backed
// by a fake Unity bridge, or an external server selected via UNITY_MCP_URL.
type TestConfig struct {
	MCPURL  string
	Timeout time.Duration

	bridge    *fakeUnityBridge
	conn      *unity.Connection
	logDir    string
	cancel    context.CancelFunc
	serveDone chan error
	cleanedUp bool
}

// NewTestConfig creates a test configuration
func NewTestConfig() *TestConfig {
	return &TestConfig{Timeout: defaultTimeout}
}

// Setup starts the test environment: a fake Unity bridge, tool discovery
// against it, and the MCP server itself on a loopback port. When
// UNITY_MCP_URL is set the in-process pieces are skipped and the suite runs
// against the external server instead.
func (c *TestConfig) Setup(ctx context.Context) error {
	if envURL := os.Getenv("UNITY_MCP_URL"); envURL != "" {
		fmt.Printf("Using UNITY_MCP_URL from environment: %s\n", envURL)
		c.MCPURL = envURL
		return c.waitForReady(ctx, c.MCPURL+"/health")
	}

	bridge, err := startFakeBridge()
	if err != nil {
		return fmt.Errorf("failed to start fake Unity bridge: %w", err)
	}
	c.bridge = bridge

	logDir, err := os.MkdirTemp("", "unity-mcp-e2e-")
	if err != nil {
		c.Cleanup()
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	c.logDir = logDir
	logPath := filepath.Join(logDir, "Editor.log")
	if err := os.WriteFile(logPath, []byte(sampleEditorLog), 0o644); err != nil {
		c.Cleanup()
		return fmt.Errorf("failed to write Editor.log: %w", err)
	}

	c.conn = unity.NewConnection(bridge.addr())

	discoverCtx, cancelDiscover := context.WithTimeout(ctx, c.Timeout)
	defer cancelDiscover()
	descriptors, err := unity.DiscoverTools(discoverCtx, c.conn)
	if err != nil {
		c.Cleanup()
		return fmt.Errorf("tool discovery against fake bridge failed: %w", err)
	}
	fmt.Printf("Discovered %d tools from fake bridge\n", len(descriptors))

	opts := mcp.UnityMCPOptions{
		Conn: c.conn,
		Compile: compile.Options{
			SettleInterval: settleInterval,
			LogPath:        logPath,
		},
	}
	mcpServer := mcp.NewMCPServer(opts, descriptors)

	listenAddr, err := pickListenAddr()
	if err != nil {
		c.Cleanup()
		return fmt.Errorf("failed to pick listen address: %w", err)
	}
	c.MCPURL = "http://" + listenAddr

	serveCtx, cancelServe := context.WithCancel(ctx)
	c.cancel = cancelServe
	c.serveDone = make(chan error, 1)
	go func() {
		c.serveDone <- mcp.Serve(serveCtx, mcpServer, listenAddr)
	}()

	if err := c.waitForReady(ctx, c.MCPURL+"/health"); err != nil {
		c.Cleanup()
		return fmt.Errorf("failed waiting for unity-mcp: %w", err)
	}

	fmt.Printf("unity-mcp is ready at %s\n", c.MCPURL)
	return nil
}

// Cleanup stops the server, the fake bridge, and removes the temporary
// Editor.log. Safe to call multiple times.
func (c *TestConfig) Cleanup() {
	if c.cleanedUp {
		return
	}
	c.cleanedUp = true
	if c.cancel != nil {
		c.cancel()
		select {
		case <-c.serveDone:
		case <-time.After(defaultTimeout):
			fmt.Println("Timed out waiting for server shutdown")
		}
	}
	if c.conn != nil {
		c.conn.Disconnect()
	}
	if c.bridge != nil {
		c.bridge.close()
	}
	if c.logDir != "" {
		os.RemoveAll(c.logDir)
	}
}

// pickListenAddr reserves a free loopback port and returns host:port for it.
// The listener is closed right away, so there is a small window where another
// process could grab the port, which is acceptable for tests.
func pickListenAddr() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr, nil
}

// waitForReady polls the target URL until it returns HTTP 200, timeout occurs, or context is cancelled
func (c *TestConfig) waitForReady(ctx context.Context, targetURL string) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	fmt.Printf("Waiting for %s to be ready (timeout: %v)\n", targetURL, c.Timeout)
	attempt := 0
	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.Canceled {
				return fmt.Errorf("cancelled waiting for %s", targetURL)
			}
			return fmt.Errorf("timeout waiting for %s to be ready (last error: %v)", targetURL, lastErr)
		case <-ticker.C:
			attempt++
			resp, err := http.Get(targetURL)
			if err != nil {
				lastErr = err
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Printf("Health check succeeded after %d attempts\n", attempt)
				return nil
			}
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}
}

// fakeUnityBridge is a minimal stand-in for the Unity Editor bridge. It
// speaks the same newline-free JSON framing as the real bridge and serves a
// fixed tool inventory plus canned responses per command type.
type fakeUnityBridge struct {
	ln net.Listener
}

type bridgeCommand struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

func startFakeBridge() (*fakeUnityBridge, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	b := &fakeUnityBridge{ln: ln}
	go b.serve()
	return b, nil
}

func (b *fakeUnityBridge) addr() string {
	return b.ln.Addr().String()
}

func (b *fakeUnityBridge) close() {
	b.ln.Close()
}

func (b *fakeUnityBridge) serve() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.handleConn(conn)
	}
}

func (b *fakeUnityBridge) handleConn(conn net.Conn) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var cmd bridgeCommand
		if err := dec.Decode(&cmd); err != nil {
			return
		}
		if err := enc.Encode(b.respond(cmd)); err != nil {
			return
		}
	}
}

func (b *fakeUnityBridge) respond(cmd bridgeCommand) map[string]any {
	switch cmd.Type {
	case "list_tools":
		return map[string]any{
			"success": true,
			"message": "Tools listed",
			"data": map[string]any{
				"tools": []map[string]any{
					{
						"commandType": "manage-scene",
						"description": "Open, save, and query Unity scenes.",
						"parameters": []map[string]any{
							{
								"name":        "action",
								"type":        "string",
								"description": "Operation to perform",
								"required":    true,
							},
							{
								"name":        "scene_path",
								"type":        "string",
								"description": "Project-relative scene path",
								"required":    false,
							},
						},
					},
					{
						"commandType": "broken-tool",
						"description": "Rejects every invocation.",
					},
				},
			},
		}
	case "project_files_refresher":
		return map[string]any{
			"success": true,
			"message": "Refresh queued",
		}
	case "manage-scene":
		action, _ := cmd.Params["action"].(string)
		return map[string]any{
			"success": true,
			"message": fmt.Sprintf("Scene action %q completed", action),
			"data":    map[string]any{"action": action},
		}
	case "broken-tool":
		return map[string]any{
			"success": false,
			"error":   "editor rejected command",
		}
	default:
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("unknown command type: %s", cmd.Type),
		}
	}
}
