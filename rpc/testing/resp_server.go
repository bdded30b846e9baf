package testing

import (
	"bufio"
	"errors"
	"github.com/tidwall/resp"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
)

// RESPServer serves a Server over the RESP protocol on a random local port.
// Like the real server, a connection starts in RESP output mode and switches to
// JSON replies after OUTPUT json.
type RESPServer struct {
	*Server
	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
}

// StartRESPServer starts a fake RESP server. It is stopped when the test finishes.
func StartRESPServer(t testing.TB, srv *Server) *RESPServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start fake resp server: %v", err)
	}

	s := &RESPServer{
		Server:   srv,
		listener: listener,
		conns:    make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(s.Close)
	return s
}

// Addr returns host:port of the listener
func (s *RESPServer) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the listener and closes all open connections
func (s *RESPServer) Close() {
	s.listener.Close()
	s.DropConnections()
	s.wg.Wait()
}

// DropConnections closes all client connections but keeps the listener open
func (s *RESPServer) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *RESPServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection answers the commands of one connection in order
func (s *RESPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	rd := resp.NewReader(bufio.NewReader(conn))
	wr := resp.NewWriter(conn)
	jsonOutput := false

	for {
		v, _, err := rd.ReadValue()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				Logger.Debugf("fake resp server: read failed: %v", err)
			}
			return
		}

		values := v.Array()
		args := make([]string, len(values))
		for i, value := range values {
			args[i] = value.String()
		}

		var reply resp.Value
		switch {
		case len(args) == 2 && strings.EqualFold(args[0], "output"):
			jsonOutput = strings.EqualFold(args[1], "json")
			reply = resp.StringValue(s.Handle(args))
			if !jsonOutput {
				reply = resp.SimpleStringValue("OK")
			}
		case jsonOutput:
			reply = resp.StringValue(s.Handle(args))
		case len(args) == 1 && strings.EqualFold(args[0], "ping"):
			s.Handle(args)
			reply = resp.SimpleStringValue("PONG")
		default:
			s.Handle(args)
			reply = resp.ErrorValue(errors.New("ERR the fake server only answers in json mode"))
		}

		if err := wr.WriteValue(reply); err != nil {
			return
		}

		if len(args) > 0 && strings.EqualFold(args[0], "quit") {
			return
		}
	}
}
