// Package cmd implements the command-line interface t38, a client for Tile38
// compatible geospatial servers. Every command creates a client from the
// connection flags (or T38_* environment variables) and prints the reply.
//
// The package is organized into several subpackages:
//
//   - server: Server and connection commands (ping, info, gc, config, flushdb, readonly)
//   - obj: Object and key commands (set, get, del, keys, scan, jset, ...)
//   - perf: Parallel SET/GET benchmark with a latency report
//   - shell: Interactive shell sending raw command lines
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See t38 -help for a list of all commands.
package cmd
