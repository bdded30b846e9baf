package util

import (
	"fmt"
	"github.com/ValentinKolb/t38/rpc/client"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/ValentinKolb/t38/rpc/transport"
	"github.com/ValentinKolb/t38/rpc/transport/http"
	"github.com/ValentinKolb/t38/rpc/transport/redis"
	"github.com/ValentinKolb/t38/rpc/transport/tcp"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"io"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Client configuration
// --------------------------------------------------------------------------

// SetupRPCClientFlags adds the connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	defaults := common.DefaultClientConfig()

	key := "host"
	cmd.PersistentFlags().String(key, defaults.Host, WrapString("Host of the server"))

	key = "port"
	cmd.PersistentFlags().Int(key, defaults.Port, WrapString("Port of the server"))

	key = "debug"
	cmd.PersistentFlags().Bool(key, false, WrapString("Log every command line sent and every raw reply received"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, defaults.TimeoutSecond, WrapString("The timeout in seconds of the client"))

	key = "transport-pool-size"
	cmd.PersistentFlags().Int(key, 0, WrapString("Connections the redis transport may open (0 = driver default)"))

	key = "transport-pipeline-depth"
	cmd.PersistentFlags().Int(key, defaults.Transport.PipelineDepth, WrapString("Maximum number of requests in flight on the tcp transport"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, defaults.Transport.TCPConf.TCPNoDelay, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds (only for tcp)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("t38")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		Host:          viper.GetString("host"),
		Port:          viper.GetInt("port"),
		Debug:         viper.GetBool("debug"),
		TimeoutSecond: viper.GetInt("timeout"),
		Transport: common.ClientTransportConfig{
			PoolSize:      viper.GetInt("transport-pool-size"),
			PipelineDepth: viper.GetInt("transport-pipeline-depth"),
			TCPConf: common.TCPConf{
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			},
		},
	}
}

// GetTransport creates the transport selected by the transport flag
func GetTransport() (transport.IRPCClientTransport, error) {
	return NewTransport(viper.GetString("transport"))
}

// NewTransport creates a transport by name
func NewTransport(name string) (transport.IRPCClientTransport, error) {
	switch name {
	case "redis":
		return redis.NewRedisClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "http":
		return http.NewHttpClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// NewClient binds the flags of cmd and connects a client with the resulting configuration
func NewClient(cmd *cobra.Command) (*client.Client, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return nil, err
	}

	t, err := GetTransport()
	if err != nil {
		return nil, err
	}

	return client.NewClient(GetClientConfig(), t)
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

// OutputFormat returns the format selected by the output flag
func OutputFormat() string {
	return viper.GetString("output")
}

// PrintResult writes a result in the format selected by the output flag
func PrintResult(w io.Writer, res client.Result) error {
	return WriteResult(w, res, OutputFormat())
}

// WriteResult writes a result as json or yaml. Results without a value print nothing.
func WriteResult(w io.Writer, res client.Result, format string) error {
	if !res.Exists() {
		return nil
	}

	switch format {
	case "", "json":
		_, err := fmt.Fprintln(w, res.Raw())
		return err
	case "yaml":
		var v any
		if err := res.Decode(&v); err != nil {
			return err
		}
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("invalid output format %s", format)
	}
}

// PrintValue writes any value in the format selected by the output flag
func PrintValue(w io.Writer, v any) error {
	switch format := OutputFormat(); format {
	case "", "json":
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("invalid output format %s", format)
	}
}
