package testing

import (
	"context"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var Logger = logger.GetLogger("testing")

// Call is a single command seen by a RecordingTransport
type Call struct {
	Name string
	Args []string
}

// Line returns the call as a command line
func (c Call) Line() string {
	args := make([]any, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg
	}
	return common.Command{Name: c.Name, Args: args}.Line()
}

// RecordingTransport is a transport.IRPCClientTransport that records every command and
// answers with a scripted reply. Without a script every command gets the reply of Reply,
// or the reply of the wrapped Server if one is set.
type RecordingTransport struct {
	mu        sync.Mutex
	calls     []Call
	replies   []string
	errs      []error
	connected bool
	closed    bool

	// Reply is returned when no scripted reply is left and Server is nil
	Reply string
	// Server answers commands when no scripted reply is left
	Server *Server
	// ConnectErr is returned by Connect
	ConnectErr error
}

// NewRecordingTransport creates a transport answering {"ok":true} to everything
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{Reply: `{"ok":true,"elapsed":"1µs"}`}
}

// Enqueue scripts the next reply
func (r *RecordingTransport) Enqueue(reply string) *RecordingTransport {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
	r.errs = append(r.errs, nil)
	return r
}

// EnqueueError scripts the next call to fail with err
func (r *RecordingTransport) EnqueueError(err error) *RecordingTransport {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, "")
	r.errs = append(r.errs, err)
	return r
}

// Calls returns a copy of the recorded calls
func (r *RecordingTransport) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Closed reports whether Close was called
func (r *RecordingTransport) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (r *RecordingTransport) Connect(config common.ClientConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ConnectErr != nil {
		return r.ConnectErr
	}
	r.connected = true
	return nil
}

func (r *RecordingTransport) Send(ctx context.Context, name string, args []any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	call := Call{Name: name, Args: make([]string, len(args))}
	for i, arg := range args {
		call.Args[i] = common.FormatArg(arg)
	}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	if len(r.replies) > 0 {
		reply, err := r.replies[0], r.errs[0]
		r.replies, r.errs = r.replies[1:], r.errs[1:]
		r.mu.Unlock()
		return reply, err
	}
	srv, reply := r.Server, r.Reply
	r.mu.Unlock()

	if srv != nil {
		return srv.Handle(append([]string{name}, call.Args...)), nil
	}
	return reply, nil
}

func (r *RecordingTransport) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
