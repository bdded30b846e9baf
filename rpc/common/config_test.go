package common

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		config ClientConfig
		want   string
	}{
		{"Defaults", DefaultClientConfig(), "localhost:9851"},
		{"Empty", ClientConfig{}, "localhost:9851"},
		{"Host", ClientConfig{Host: "tile38.internal"}, "tile38.internal:9851"},
		{"Port", ClientConfig{Port: 9000}, "localhost:9000"},
		{"IPv6", ClientConfig{Host: "::1", Port: 9851}, "[::1]:9851"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.Endpoint())
		})
	}
}

func TestEndpointOnReturnedValue(t *testing.T) {
	// the methods must be callable on non-addressable values such as Client.Config()
	assert.Equal(t, "localhost:9851", DefaultClientConfig().Endpoint())
	assert.Contains(t, DefaultClientConfig().String(), "localhost:9851")
}

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()
	assert.Equal(t, DefaultHost, config.Host)
	assert.Equal(t, DefaultPort, config.Port)
	assert.False(t, config.Debug)
	assert.Positive(t, config.TimeoutSecond)
	assert.Positive(t, config.Transport.PipelineDepth)
}

func TestConfigString(t *testing.T) {
	config := DefaultClientConfig()
	config.Debug = true

	s := config.String()
	assert.Contains(t, s, "CLIENT CONFIGURATION")
	assert.Contains(t, s, "localhost:9851")
	assert.Contains(t, s, "TRANSPORT")
	assert.Contains(t, s, "true")
}
