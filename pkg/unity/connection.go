package unity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	// DefaultAddr is the address the Unity editor bridge listens on by default
	DefaultAddr = "localhost:6400"
	// DefaultDialTimeout bounds the TCP connect to the editor bridge
	DefaultDialTimeout = 10 * time.Second
	// DefaultCommandTimeout is the default timeout for a command round trip
	DefaultCommandTimeout = 30 * time.Second
)

// Client defines the interface for sending commands to the Unity editor bridge
type Client interface {
	SendCommand(ctx context.Context, command string, params map[string]any) (CommandResult, error)
}

// CommandResult is the interpreted outcome of a single bridge command.
// It is always well-formed regardless of which optional fields the
// editor included in its response.
type CommandResult struct {
	Success      bool
	Message      string
	ErrorMessage string
	Data         any
}

// Connection is a TCP connection to the Unity editor bridge. It dials
// lazily on first use and serializes round trips; the bridge processes
// one request at a time.
type Connection struct {
	addr           string
	dialTimeout    time.Duration
	commandTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	dec  *json.Decoder
}

// Ensure Connection implements Client at compile time
var _ Client = (*Connection)(nil)

func NewConnection(addr string) *Connection {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Connection{
		addr:           addr,
		dialTimeout:    DefaultDialTimeout,
		commandTimeout: DefaultCommandTimeout,
	}
}

// WithTimeouts sets custom dial and command timeouts for the connection.
// Zero values keep the current timeout.
func (c *Connection) WithTimeouts(dial, command time.Duration) *Connection {
	if dial > 0 {
		c.dialTimeout = dial
	}
	if command > 0 {
		c.commandTimeout = command
	}
	return c
}

// Addr returns the bridge address this connection targets.
func (c *Connection) Addr() string {
	return c.addr
}

// Connect establishes the TCP connection to the editor bridge. Calling
// it when already connected is a no-op; SendCommand connects on demand,
// so Connect is only needed to verify reachability up front.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Connection) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		connectsTotal.WithLabelValues(outcomeError).Inc()
		return fmt.Errorf("failed to connect to Unity bridge at %s: %w", c.addr, err)
	}
	connectsTotal.WithLabelValues(outcomeSuccess).Inc()
	slog.Info("Connected to Unity bridge", "addr", c.addr)

	c.conn = conn
	c.dec = json.NewDecoder(conn)
	return nil
}

// Disconnect closes the connection. Safe to call when not connected.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.dec = nil
	return err
}

// commandRequest is the wire format the editor bridge expects.
type commandRequest struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// commandResponse is the wire format the editor bridge replies with.
// Every field is optional; see toResult for how status is derived.
type commandResponse struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// toResult interprets the response permissively: a non-empty error field
// means failure, an explicit success flag is honored otherwise, and a
// response carrying neither is treated as success.
func (r commandResponse) toResult() CommandResult {
	result := CommandResult{
		Message:      r.Message,
		ErrorMessage: r.Error,
	}

	if len(r.Data) > 0 && string(r.Data) != "null" {
		var data any
		if err := json.Unmarshal(r.Data, &data); err == nil {
			result.Data = data
		}
	}

	switch {
	case r.Error != "":
		result.Success = false
	case r.Success != nil:
		result.Success = *r.Success
	default:
		result.Success = true
	}
	return result
}

// SendCommand sends a command to the editor bridge and waits for its
// response. It connects on first use and retries once on a fresh
// connection when the transport fails mid-exchange; the editor drops
// connections across domain reloads, so a single stale socket is not
// an error worth surfacing.
func (c *Connection) SendCommand(ctx context.Context, command string, params map[string]any) (CommandResult, error) {
	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(commandRequest{Type: command, Params: params})
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to encode %s command: %w", command, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := c.connectLocked(ctx); err != nil {
			commandsTotal.WithLabelValues(command, outcomeError).Inc()
			return CommandResult{}, err
		}

		result, err := c.roundTripLocked(ctx, payload)
		if err == nil {
			if result.Success {
				commandsTotal.WithLabelValues(command, outcomeSuccess).Inc()
			} else {
				commandsTotal.WithLabelValues(command, outcomeRejected).Inc()
			}
			return result, nil
		}

		lastErr = err
		c.closeLocked()
		if attempt == 0 {
			slog.Warn("Unity bridge exchange failed, retrying on a fresh connection", "command", command, "err", err)
		}
	}

	commandsTotal.WithLabelValues(command, outcomeError).Inc()
	return CommandResult{}, fmt.Errorf("failed to send %s command: %w", command, lastErr)
}

func (c *Connection) roundTripLocked(ctx context.Context, payload []byte) (CommandResult, error) {
	deadline := time.Now().Add(c.commandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return CommandResult{}, err
	}

	if _, err := c.conn.Write(payload); err != nil {
		return CommandResult{}, err
	}

	var resp commandResponse
	if err := c.dec.Decode(&resp); err != nil {
		return CommandResult{}, err
	}
	return resp.toResult(), nil
}
