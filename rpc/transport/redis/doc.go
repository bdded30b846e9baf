// Package redis implements the default transport on top of the go-redis driver.
//
// go-redis keeps a pool of connections and matches replies to requests on each of them.
// Every pooled connection is switched to JSON output in the OnConnect hook, so all replies
// are JSON envelopes. Retries of the driver are disabled.
package redis
