package transport

import (
	"context"
	"github.com/ValentinKolb/t38/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client transport.
// A transport owns the connection to one server and matches every reply to the request it answers.
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration.
	// Socket based transports switch the connection to JSON output here.
	Connect(config common.ClientConfig) error
	// Send sends a single command and blocks until the raw reply text arrives or ctx is done.
	// A reply the server marks as a protocol error may be returned as a *common.Error of kind
	// KindServer, every other failure is a plain error and is classified by the caller.
	Send(ctx context.Context, name string, args []any) (reply string, err error)
	// Close closes the transport connection
	Close() error
}
