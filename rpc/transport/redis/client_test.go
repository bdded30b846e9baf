package redis

import (
	"context"
	"github.com/ValentinKolb/t38/rpc/common"
	t38testing "github.com/ValentinKolb/t38/rpc/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestTransport(t *testing.T) {
	t38testing.RunTransportTests(t, "Redis", NewRedisClientTransport, t38testing.RESPServerStarter)
}

func TestEveryConnectionUsesJSONOutput(t *testing.T) {
	srv := t38testing.NewServer()
	config := t38testing.RESPServerStarter(t, srv)

	tr := NewRedisClientTransport()
	require.NoError(t, tr.Connect(config))
	defer tr.Close()

	received := srv.Received()
	require.NotEmpty(t, received)
	assert.Equal(t, []string{"OUTPUT", "json"}, received[0])
}

func TestReplyText(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"String", `{"ok":true}`, `{"ok":true}`},
		{"Integer", int64(42), "42"},
		{"Nil", nil, ""},
		{"Array", []interface{}{"a", int64(1)}, `["a",1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := replyText(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorReplyIsServerError(t *testing.T) {
	// without OUTPUT json the fake server rejects everything but PING with an error reply
	srv := t38testing.NewServer()
	config := t38testing.RESPServerStarter(t, srv)
	config.Transport.PoolSize = 1

	tr := NewRedisClientTransport()
	require.NoError(t, tr.Connect(config))
	defer tr.Close()

	_, err := tr.Send(context.Background(), common.CmdOutput, []any{"resp"})
	require.NoError(t, err)

	// the connection is back in RESP mode, the next command is answered with an error reply
	_, err = tr.Send(context.Background(), common.CmdGet, []any{"fleet", "truck1"})
	require.Error(t, err)
	assert.True(t, common.IsServer(err))
}
