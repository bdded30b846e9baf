package http

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/ValentinKolb/t38/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/t38")

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	mu        sync.RWMutex
	serverURL string
	client    *http.Client
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (transport *httpClientTransport) Connect(config common.ClientConfig) error {
	serverURL := (&url.URL{Scheme: "http", Host: config.Endpoint()}).String()

	// Create client with default transport
	client := &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()

	// Set the client and server URL
	transport.client = client
	transport.serverURL = serverURL

	// No error
	return nil
}

func (transport *httpClientTransport) Send(ctx context.Context, name string, args []any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	transport.mu.RLock()
	client, serverURL := transport.client, transport.serverURL
	transport.mu.RUnlock()

	// Check if the transport is initialized
	if client == nil {
		return "", errors.New("http transport not initialized")
	}

	// Create the request
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/"+commandPath(name, args), nil)
	if err != nil {
		return "", err
	}

	// Send the request
	httpResponse, err := client.Do(httpRequest)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Read the response body
	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return "", err
	}

	// Rejected commands come with a JSON body and a non 200 status, the body is the reply
	if httpResponse.StatusCode != http.StatusOK && len(body) == 0 {
		return "", fmt.Errorf("http error: %s", httpResponse.Status)
	}
	return string(body), nil
}

func (transport *httpClientTransport) Close() error {
	transport.mu.Lock()
	defer transport.mu.Unlock()

	// Close the client
	if transport.client != nil {
		transport.client.CloseIdleConnections()
	}

	// Reset the client and server URL
	transport.client = nil
	transport.serverURL = ""

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// commandPath encodes a command as the path of the HTTP API: the command name and all
// arguments path escaped and joined with '+'. A literal '+' inside an argument is escaped
// as %2B so it is not read as a separator.
func commandPath(name string, args []any) string {
	parts := make([]string, 0, 1+len(args))
	parts = append(parts, escapeArg(name))
	for _, arg := range args {
		parts = append(parts, escapeArg(common.FormatArg(arg)))
	}
	return strings.Join(parts, "+")
}

func escapeArg(arg string) string {
	return strings.ReplaceAll(url.PathEscape(arg), "+", "%2B")
}
