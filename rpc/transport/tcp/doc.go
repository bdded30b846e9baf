// Package tcp implements the raw TCP transport. It provides the TCP specific
// connector for the base package, which does the RESP encoding and the pipelining.
//
// Socket options (TCP_NODELAY, keep alive) are taken from common.TCPConf.
package tcp
