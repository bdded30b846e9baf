// Package testing provides fake servers and a standardised test suite for
// implementations of the transport.IRPCClientTransport interface.
//
// The package contains:
//   - Server: an in memory emulation of the server commands used by the client,
//     replying with the same JSON envelopes as a real server in JSON output mode
//   - StartRESPServer / StartHTTPServer: serve a Server over RESP or the HTTP API
//   - RecordingTransport: a transport recording every command, for client tests
//   - RunTransportTests: the conformance suite every transport has to pass
//
// Example usage:
//
//	func TestTransport(t *testing.T) {
//		t38testing.RunTransportTests(t, "TCP", func() transport.IRPCClientTransport {
//			return NewTCPClientTransport()
//		}, t38testing.RESPServerStarter)
//	}
package testing
