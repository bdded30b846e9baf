// Package base provides a RESP client transport independent of the specific
// stream protocol. It is extended with protocol-specific connectors (see the tcp package).
//
// The package focuses on:
//   - Encoding commands as RESP multi bulk arrays (tidwall/resp)
//   - Pipelining: many requests may be in flight on one connection at the same time
//   - Switching every new connection to JSON output before it is used
//   - Reconnecting on the next request after a connection was lost
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific operations (dial and socket options).
//
//   - clientTransport: Core client implementation. Requests are written under a mutex and
//     registered in a FIFO queue in the same critical section. A reader goroutine takes
//     the oldest waiting request for every reply, which is correct because the server
//     answers the commands of a connection strictly in order.
//
// Error Handling:
//
//	Requests are never retried. If the connection breaks, every request waiting on it fails
//	with the read error and the next request dials a new connection. A canceled context only
//	abandons the wait; the reply is still read and discarded, so the order is kept.
//
// Thread Safety:
//
//	All public methods are thread-safe.
package base
