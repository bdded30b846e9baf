// Package transport defines the contract between the client and the network layer.
// A transport sends one command (name plus arguments) and returns the raw reply text;
// parsing the JSON reply is left to the client package.
//
// Implementations:
//
//   - redis: uses the go-redis driver (connection pool, RESP codec). This is the default.
//
//   - tcp: a single raw RESP connection built on the base package. Requests are
//     pipelined and replies are matched to requests in FIFO order.
//
//   - http: uses the HTTP API of the server. Every command is a single GET request.
//
// All implementations are safe for concurrent use.
package transport
