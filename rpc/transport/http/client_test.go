package http

import (
	"context"
	"github.com/ValentinKolb/t38/rpc/common"
	t38testing "github.com/ValentinKolb/t38/rpc/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTransport(t *testing.T) {
	t38testing.RunTransportTests(t, "HTTP", NewHttpClientTransport, t38testing.HTTPServerStarter)
}

func TestCommandPath(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []any
		want string
	}{
		{"NoArgs", "PING", nil, "PING"},
		{"Numbers", "SET", []any{"fleet", "truck1", "POINT", 33.5123, -112.2693}, "SET+fleet+truck1+POINT+33.5123+-112.2693"},
		{"Space", "SET", []any{"a b"}, "SET+a%20b"},
		{"Plus", "SET", []any{"a+b"}, "SET+a%2Bb"},
		{"Slash", "GET", []any{"a/b"}, "GET+a%2Fb"},
		{"Quotes", "SET", []any{`"x"`}, "SET+%22x%22"},
		{"Int", "EXPIRE", []any{"k", "id", 10}, "EXPIRE+k+id+10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandPath(tt.cmd, tt.args))
		})
	}
}

func TestErrorStatusWithJSONBody(t *testing.T) {
	// the server answers rejected commands with a non 200 status and the envelope as body
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"err":"id not found","elapsed":"1µs"}`))
	}))
	defer ts.Close()

	tr := NewHttpClientTransport()
	require.NoError(t, tr.Connect(t38testing.ConfigFor(t, ts.Listener.Addr().String())))
	defer tr.Close()

	reply, err := tr.Send(context.Background(), common.CmdGet, []any{"fleet", "truck1"})
	require.NoError(t, err)
	assert.Contains(t, reply, "id not found")
}

func TestErrorStatusWithoutBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	tr := NewHttpClientTransport()
	require.NoError(t, tr.Connect(t38testing.ConfigFor(t, ts.Listener.Addr().String())))
	defer tr.Close()

	_, err := tr.Send(context.Background(), common.CmdPing, nil)
	assert.Error(t, err)
}

func TestSendWithoutConnect(t *testing.T) {
	_, err := NewHttpClientTransport().Send(context.Background(), common.CmdPing, nil)
	assert.Error(t, err)
}
