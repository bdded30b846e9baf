package testing

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/ValentinKolb/t38/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"
)

// TransportFactory creates a new, unconnected transport
type TransportFactory func() transport.IRPCClientTransport

// ServerStarter starts a fake server around srv and returns a config pointing at it
type ServerStarter func(t *testing.T, srv *Server) common.ClientConfig

// RESPServerStarter starts a fake RESP server
func RESPServerStarter(t *testing.T, srv *Server) common.ClientConfig {
	return ConfigFor(t, StartRESPServer(t, srv).Addr())
}

// HTTPServerStarter starts a fake HTTP server
func HTTPServerStarter(t *testing.T, srv *Server) common.ClientConfig {
	ts := StartHTTPServer(t, srv)
	return ConfigFor(t, ts.Listener.Addr().String())
}

// ConfigFor returns the default config pointing at addr (host:port)
func ConfigFor(t *testing.T, addr string) common.ClientConfig {
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	config := common.DefaultClientConfig()
	config.Host = host
	config.Port, err = strconv.Atoi(port)
	require.NoError(t, err)
	config.TimeoutSecond = 5
	return config
}

// RunTransportTests runs the conformance suite every transport has to pass.
func RunTransportTests(t *testing.T, name string, factory TransportFactory, start ServerStarter) {
	t.Run(name, func(t *testing.T) {
		t.Run("Ping", func(t *testing.T) {
			testPing(t, factory, start)
		})

		t.Run("SetGet", func(t *testing.T) {
			testSetGet(t, factory, start)
		})

		t.Run("ArgumentEncoding", func(t *testing.T) {
			testArgumentEncoding(t, factory, start)
		})

		t.Run("ServerError", func(t *testing.T) {
			testServerError(t, factory, start)
		})

		t.Run("ConcurrentRequests", func(t *testing.T) {
			testConcurrentRequests(t, factory, start)
		})

		t.Run("CanceledContext", func(t *testing.T) {
			testCanceledContext(t, factory, start)
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory, start)
		})

		t.Run("ConnectFailure", func(t *testing.T) {
			testConnectFailure(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func connect(t *testing.T, factory TransportFactory, start ServerStarter) (transport.IRPCClientTransport, *Server) {
	t.Helper()
	srv := NewServer()
	config := start(t, srv)
	tr := factory()
	require.NoError(t, tr.Connect(config))
	t.Cleanup(func() { _ = tr.Close() })
	return tr, srv
}

func send(t *testing.T, tr transport.IRPCClientTransport, name string, args ...any) gjson.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reply, err := tr.Send(ctx, name, args)
	require.NoError(t, err)
	require.True(t, gjson.Valid(reply), "reply is not json: %q", reply)
	return gjson.Parse(reply)
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPing(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	reply := send(t, tr, common.CmdPing)
	assert.True(t, reply.Get("ok").Bool())
	assert.Equal(t, "pong", reply.Get("ping").String())
}

func testSetGet(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	reply := send(t, tr, common.CmdSet, "fleet", "truck1", "FIELD", "speed", 90.5, "POINT", 33.5123, -112.2693)
	require.True(t, reply.Get("ok").Bool(), reply.Raw)

	reply = send(t, tr, common.CmdGet, "fleet", "truck1", "WITHFIELDS", "POINT")
	require.True(t, reply.Get("ok").Bool(), reply.Raw)
	assert.Equal(t, 33.5123, reply.Get("point.lat").Float())
	assert.Equal(t, -112.2693, reply.Get("point.lon").Float())
	assert.Equal(t, 90.5, reply.Get("fields.speed").Float())
}

func testArgumentEncoding(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	values := []string{
		"hello world",
		"a+b=c",
		"path/with/slashes",
		"100% sure?",
		"ünïcödé 🌍",
		`{"json":true}`,
	}

	for i, value := range values {
		id := fmt.Sprintf("id %d+", i)
		reply := send(t, tr, common.CmdSet, "strings", id, "STRING", value)
		require.True(t, reply.Get("ok").Bool(), reply.Raw)

		reply = send(t, tr, common.CmdGet, "strings", id)
		require.True(t, reply.Get("ok").Bool(), reply.Raw)
		assert.Equal(t, value, reply.Get("object").String())
	}
}

func testServerError(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	// a rejected command is a valid reply, not a transport failure
	reply := send(t, tr, common.CmdGet, "fleet", "unknown")
	assert.False(t, reply.Get("ok").Bool())
	assert.Equal(t, "key not found", reply.Get("err").String())

	reply = send(t, tr, "NOSUCHCOMMAND")
	assert.False(t, reply.Get("ok").Bool())
	assert.NotEmpty(t, reply.Get("err").String())
}

func testConcurrentRequests(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				id := fmt.Sprintf("obj-%d-%d", w, i)
				lat := float64(w)
				lng := float64(i)

				if _, err := tr.Send(ctx, common.CmdSet, []any{"concurrent", id, "POINT", lat, lng}); err != nil {
					cancel()
					errs <- err
					return
				}

				reply, err := tr.Send(ctx, common.CmdGet, []any{"concurrent", id, "POINT"})
				cancel()
				if err != nil {
					errs <- err
					return
				}

				// every reply has to belong to the request that was sent
				p := gjson.Get(reply, "point")
				if p.Get("lat").Float() != lat || p.Get("lon").Float() != lng {
					errs <- fmt.Errorf("reply for %s does not match: %s", id, reply)
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	reply := send(t, tr, common.CmdScan, "concurrent")
	assert.Equal(t, int64(workers*perWorker), reply.Get("count").Int())
}

func testCanceledContext(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Send(ctx, common.CmdPing, nil)
	require.Error(t, err)

	// the transport stays usable
	reply := send(t, tr, common.CmdPing)
	assert.Equal(t, "pong", reply.Get("ping").String())
}

func testClose(t *testing.T, factory TransportFactory, start ServerStarter) {
	tr, _ := connect(t, factory, start)

	require.NoError(t, tr.Close())

	_, err := tr.Send(context.Background(), common.CmdPing, nil)
	assert.Error(t, err)
}

func testConnectFailure(t *testing.T, factory TransportFactory) {
	// reserve a port and close it again so nothing listens there
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	config := ConfigFor(t, addr)
	config.TimeoutSecond = 1

	tr := factory()
	defer tr.Close()
	if err := tr.Connect(config); err != nil {
		return
	}

	// transports that connect lazily fail on the first request
	_, err = tr.Send(context.Background(), common.CmdPing, nil)
	assert.Error(t, err)
}
