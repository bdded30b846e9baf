package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Defaults used when a ClientConfig field is left empty
const (
	DefaultHost = "localhost"
	DefaultPort = 9851
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds everything needed to create a client. It is read once when
// the client is created and never changed afterwards.
type ClientConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Debug logs every outgoing command line and every raw reply
	Debug bool `yaml:"debug"`

	// TimeoutSecond is used for dialing and for read/write deadlines (0 = no timeout)
	TimeoutSecond int `yaml:"timeout_second"`

	Transport ClientTransportConfig `yaml:"transport"`
}

// ClientTransportConfig holds settings only some transports use
type ClientTransportConfig struct {
	// PoolSize is the number of connections the redis transport may open (0 = driver default)
	PoolSize int `yaml:"pool_size"`
	// PipelineDepth limits the in-flight requests of the tcp transport
	PipelineDepth int `yaml:"pipeline_depth"`
	// TCP socket options for the tcp transport
	TCPConf TCPConf `yaml:"tcp"`
}

// TCPConf holds TCP socket options
type TCPConf struct {
	TCPNoDelay      bool `yaml:"no_delay"`
	TCPKeepAliveSec int  `yaml:"keep_alive_sec"`
}

// DefaultClientConfig returns the configuration for a server on localhost:9851
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Host:          DefaultHost,
		Port:          DefaultPort,
		TimeoutSecond: 10,
		Transport: ClientTransportConfig{
			PipelineDepth: 1024,
			TCPConf: TCPConf{
				TCPNoDelay: true,
			},
		},
	}
}

// Endpoint returns host:port, filling in the defaults for empty values
func (c ClientConfig) Endpoint() string {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// String returns a formatted string representation of the client configuration
func (c ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint())
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Debug", strconv.FormatBool(c.Debug))

	// Transport
	addSection("Transport")
	addField("Pool Size", strconv.Itoa(c.Transport.PoolSize))
	addField("Pipeline Depth", strconv.Itoa(c.Transport.PipelineDepth))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPConf.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPConf.TCPKeepAliveSec))

	return sb.String()
}
