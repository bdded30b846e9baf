package base

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/ValentinKolb/t38/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/tidwall/resp"
	"net"
	"strings"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/t38")

var (
	errClosed       = errors.New("transport is closed")
	errTooManyCalls = errors.New("too many requests in flight")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	reply string
	err   error
}

// clientConnection represents a single net connection.
// Replies arrive in the order the requests were written, so the reader goroutine
// hands each reply to the oldest waiting request.
type clientConnection struct {
	conn    net.Conn
	writer  *resp.Writer
	pending chan chan responseResult // FIFO of waiting requests
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	mu        sync.Mutex // Protects current and the write order
	current   *clientConnection
	stopping  bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Store the config
	t.config = config
	t.stopping = false

	// Close an existing connection
	if t.current != nil {
		t.current.conn.Close()
		t.current = nil
	}

	if err := t.reconnect(); err != nil {
		return err
	}

	Logger.Infof("Connected to %s using %s transport", config.Endpoint(), t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(ctx context.Context, name string, args []any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, ok := ctx.Deadline(); !ok && t.config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(t.config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	respCh := make(chan responseResult, 1)

	// Register and write under the lock so the FIFO order equals the write order
	t.mu.Lock()
	if t.stopping {
		t.mu.Unlock()
		return "", errClosed
	}
	if t.current == nil {
		// The last connection failed, reconnect on demand
		if err := t.reconnect(); err != nil {
			t.mu.Unlock()
			return "", err
		}
	}
	c := t.current

	select {
	case c.pending <- respCh:
	default:
		t.mu.Unlock()
		return "", errTooManyCalls
	}

	if t.config.TimeoutSecond > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(time.Duration(t.config.TimeoutSecond) * time.Second))
	}
	err := c.writer.WriteMultiBulk(name, stringArgs(args)...)
	if err != nil {
		// Closing the connection makes the reader fail every pending request, including this one
		Logger.Warningf("Failed to write %s to %s: %v", name, t.config.Endpoint(), err)
		t.drop(c)
	}
	t.mu.Unlock()

	// Wait for response or cancellation
	select {
	case result := <-respCh:
		return result.reply, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopping = true
	if t.current != nil {
		t.drop(t.current)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// reconnect establishes a new connection and switches it to JSON output.
// Must be called with t.mu held.
func (t *clientTransport) reconnect() error {
	endpoint := t.config.Endpoint()
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// Connect to the endpoint
	conn, err := t.connector.Connect(endpoint, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", endpoint, err)
	}

	reader := resp.NewReader(bufio.NewReader(conn))
	writer := resp.NewWriter(conn)

	// Switch to JSON replies before any request is sent
	if err := switchOutput(conn, reader, writer, timeout); err != nil {
		conn.Close()
		return fmt.Errorf("failed to switch %s to json output: %w", endpoint, err)
	}

	depth := t.config.Transport.PipelineDepth
	if depth <= 0 {
		depth = 1024
	}

	c := &clientConnection{
		conn:    conn,
		writer:  writer,
		pending: make(chan chan responseResult, depth),
	}
	t.current = c

	// Start the response reader
	go t.readResponses(c, reader)
	return nil
}

// switchOutput sends OUTPUT json and waits for the reply
func switchOutput(conn net.Conn, reader *resp.Reader, writer *resp.Writer, timeout time.Duration) error {
	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
		defer conn.SetDeadline(time.Time{})
	}

	cmd := common.NewOutputCommand("json")
	if err := writer.WriteMultiBulk(cmd.Name, stringArgs(cmd.Args)...); err != nil {
		return err
	}
	v, _, err := reader.ReadValue()
	if err != nil {
		return err
	}
	if err := v.Error(); err != nil {
		return err
	}
	return nil
}

// drop closes a connection and detaches it from the transport.
// Must be called with t.mu held.
func (t *clientTransport) drop(c *clientConnection) {
	if t.current == c {
		t.current = nil
	}
	c.conn.Close()
}

// readResponses reads replies in a loop and hands them to the waiting requests in order
func (t *clientTransport) readResponses(c *clientConnection, reader *resp.Reader) {
	for {
		v, _, err := reader.ReadValue()
		if err != nil {
			t.mu.Lock()
			if !t.stopping {
				Logger.Warningf("Connection to %s lost: %v", t.config.Endpoint(), err)
			}
			t.drop(c)
			t.mu.Unlock()

			// Fail every request still waiting on this connection
			failPending(c, fmt.Errorf("connection lost: %w", err))
			return
		}

		select {
		case respCh := <-c.pending:
			respCh <- replyOf(v)
		default:
			Logger.Warningf("Received a reply from %s without a pending request", t.config.Endpoint())
		}
	}
}

func failPending(c *clientConnection, err error) {
	for {
		select {
		case respCh := <-c.pending:
			respCh <- responseResult{err: err}
		default:
			return
		}
	}
}

// replyOf converts a RESP value into the reply text handed to the client
func replyOf(v resp.Value) responseResult {
	if err := v.Error(); err != nil {
		return responseResult{err: common.NewServerError(strings.TrimPrefix(err.Error(), "ERR "), "")}
	}
	if v.IsNull() {
		return responseResult{}
	}
	if values := v.Array(); values != nil {
		// Only RESP output mode replies with arrays, keep them readable as JSON
		parts := make([]string, len(values))
		for i, value := range values {
			parts[i] = value.String()
		}
		data, err := json.Marshal(parts)
		return responseResult{reply: string(data), err: err}
	}
	return responseResult{reply: v.String()}
}

func stringArgs(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = common.FormatArg(arg)
	}
	return out
}
