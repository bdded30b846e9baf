package client

import (
	"context"
	"errors"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var (
	Logger = logger.GetLogger("client")
)

var errMissingValue = errors.New("value missing in reply")

// invokeRequest is the helper used by all client methods to send commands.
// It sends the command, logs both directions when the client is in debug mode,
// interprets the reply with the given projection and records the call in the client metrics.
func (c *Client) invokeRequest(ctx context.Context, cmd common.Command, p Projection) (res Result, err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(cmd.Name, start, err)
	}()

	if c.debug {
		c.log.Debugf("> %s", cmd.Line())
	}

	raw, err := c.transport.Send(ctx, cmd.Name, cmd.Args)
	if err != nil {
		if c.debug {
			c.log.Debugf("< error: %v", err)
		}
		return Result{}, common.NewTransportError(err)
	}

	if c.debug {
		c.log.Debugf("< %s", raw)
	}

	return Interpret(raw, p)
}

// invokeOk sends a command whose reply only carries ok
func (c *Client) invokeOk(ctx context.Context, cmd common.Command) error {
	_, err := c.invokeRequest(ctx, cmd, ProjectProperty("ok"))
	return err
}

// rejected records a command that could not be encoded and returns its error unchanged
func (c *Client) rejected(name string, err error) error {
	c.metrics.observe(name, time.Now(), err)
	return err
}
