// Package rpc contains everything needed to talk to a geospatial server over the network.
//
// The package is organized into several subpackages:
//
//   - common: the command encoder (commands, locations, SET/GET options), the error
//     taxonomy, the client configuration and logging.
//
//   - transport: the transport contract and its implementations (redis, tcp, http).
//
//   - client: the client facade and the response interpreter.
//
//   - testing: fake servers and a conformance suite shared by all transport tests.
package rpc
