// Package http implements the HTTP transport. Every command is sent as a single
// GET request to the HTTP API of the server:
//
//	GET /SET+fleet+truck1+POINT+33.5123+-112.2693
//
// The command name and every argument are path escaped and joined with '+'. The reply
// body is the JSON envelope, HTTP always answers in JSON so no OUTPUT command is needed.
//
// Thread Safety:
//
//	The transport is thread-safe. Concurrent requests use separate HTTP requests on the
//	connection pool of net/http, so no reply matching is needed.
package http
