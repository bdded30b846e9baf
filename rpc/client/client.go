package client

import (
	"context"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/ValentinKolb/t38/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"os"
)

// Client is the facade for one server connection. All methods block until the reply
// arrived (or ctx is done) and may be called concurrently from multiple goroutines.
// The client holds no per call state: config, transport, logger and metrics are set once
// by NewClient.
type Client struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
	log       logger.ILogger
	debug     bool
	metrics   *clientMetrics
}

// NewClient connects the transport and returns a client using it.
// The debug flag of the config only affects this client.
func NewClient(config common.ClientConfig, transport transport.IRPCClientTransport) (*Client, error) {
	return newClient(config, transport, os.Stderr)
}

func newClient(config common.ClientConfig, transport transport.IRPCClientTransport, logOutput io.Writer) (*Client, error) {
	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, common.NewTransportError(err)
	}

	level := logger.INFO
	if config.Debug {
		level = logger.DEBUG
	}

	Logger.Debugf("client connected to %s", config.Endpoint())

	return &Client{
		config:    config,
		transport: transport,
		log:       common.NewLogger("client/"+config.Endpoint(), logOutput, level),
		debug:     config.Debug,
		metrics:   newClientMetrics(),
	}, nil
}

// Config returns the configuration the client was created with
func (c *Client) Config() common.ClientConfig {
	return c.config
}

// Close closes the transport. It does not send QUIT.
func (c *Client) Close() error {
	return c.transport.Close()
}

// WriteMetrics writes the request metrics of this client in prometheus text format
func (c *Client) WriteMetrics(w io.Writer) {
	c.metrics.write(w)
}

// Do sends any command and projects the reply with p
func (c *Client) Do(ctx context.Context, cmd common.Command, p Projection) (Result, error) {
	return c.invokeRequest(ctx, cmd, p)
}

// --------------------------------------------------------------------------
// Server and connection commands
// --------------------------------------------------------------------------

// Ping returns the ping property of the reply ("pong")
func (c *Client) Ping(ctx context.Context) (string, error) {
	res, err := c.invokeRequest(ctx, common.NewPingCommand(), ProjectProperty("ping"))
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// Quit sends QUIT and returns the raw reply. The client itself stays usable as far as
// the transport allows.
func (c *Client) Quit(ctx context.Context) (string, error) {
	res, err := c.invokeRequest(ctx, common.NewQuitCommand(), ProjectRaw)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// Server returns the server statistics
func (c *Client) Server(ctx context.Context) (Result, error) {
	return c.invokeRequest(ctx, common.NewServerCommand(), ProjectProperty("stats"))
}

// GC triggers a garbage collection on the server
func (c *Client) GC(ctx context.Context) error {
	return c.invokeOk(ctx, common.NewGCCommand())
}

// ConfigGet returns the properties object for prop
func (c *Client) ConfigGet(ctx context.Context, prop string) (Result, error) {
	return c.invokeRequest(ctx, common.NewConfigGetCommand(prop), ProjectProperty("properties"))
}

// ConfigSet sets a configuration property
func (c *Client) ConfigSet(ctx context.Context, prop, value string) error {
	return c.invokeOk(ctx, common.NewConfigSetCommand(prop, value))
}

// ConfigRewrite makes the server persist its configuration
func (c *Client) ConfigRewrite(ctx context.Context) error {
	return c.invokeOk(ctx, common.NewConfigRewriteCommand())
}

// FlushDB deletes all data on the server
func (c *Client) FlushDB(ctx context.Context) error {
	return c.invokeOk(ctx, common.NewFlushDBCommand())
}

// ReadOnly switches the server into (or out of) read only mode
func (c *Client) ReadOnly(ctx context.Context, readOnly bool) error {
	return c.invokeOk(ctx, common.NewReadOnlyCommand(readOnly))
}
