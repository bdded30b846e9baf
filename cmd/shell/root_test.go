package shell

import (
	"bytes"
	"context"
	"github.com/ValentinKolb/t38/rpc/client"
	"github.com/ValentinKolb/t38/rpc/common"
	t38testing "github.com/ValentinKolb/t38/rpc/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"PING", []string{"PING"}},
		{"  set fleet   truck1 POINT 1 2 ", []string{"set", "fleet", "truck1", "POINT", "1", "2"}},
		{`SET notes n1 STRING "hello world"`, []string{"SET", "notes", "n1", "STRING", "hello world"}},
		{`jset user 901 name 'Tom "T" Jones'`, []string{"jset", "user", "901", "name", `Tom "T" Jones`}},
		{`say "a \"b\" c\n"`, []string{"say", "a \"b\" c\n"}},
		{`KEYS ""`, []string{"KEYS", ""}},
		{`a"b c"d`, []string{"ab cd"}},
		{"tab\tseparated", []string{"tab", "separated"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			args, err := splitLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, args)
		})
	}
}

func TestSplitLineUnbalanced(t *testing.T) {
	for _, line := range []string{`SET "open`, `'open`, `trailing "\`} {
		_, err := splitLine(line)
		assert.Error(t, err, line)
	}
}

func TestRunShell(t *testing.T) {
	tr := t38testing.NewRecordingTransport()
	tr.Server = t38testing.NewServer()
	c, err := client.NewClient(common.DefaultClientConfig(), tr)
	require.NoError(t, err)
	defer c.Close()

	input := strings.Join([]string{
		"ping",
		"",
		"help",
		`set fleet "truck 1" POINT 33.5 -112.2`,
		`get fleet "truck 1" POINT`,
		`get fleet "unbalanced`,
		"get fleet missing",
		"exit",
		"ping",
	}, "\n")

	var out, errOut bytes.Buffer
	le := newScannerEditor(strings.NewReader(input), &out)
	require.NoError(t, runShell(context.Background(), c, le, &out, &errOut, "json"))

	assert.Contains(t, out.String(), "localhost:9851> ")
	assert.Contains(t, out.String(), `"ping":"pong"`)
	assert.Contains(t, out.String(), "Local commands")
	assert.Contains(t, out.String(), `"point":{"lat":33.5,"lon":-112.2}`)
	assert.Contains(t, out.String(), `"err":"id not found"`)
	assert.Contains(t, errOut.String(), "unbalanced quotes")

	// nothing after exit is sent
	var names []string
	for _, call := range tr.Calls() {
		names = append(names, call.Name)
	}
	assert.Equal(t, []string{"PING", "SET", "GET", "GET"}, names)
	assert.Equal(t, []string{"fleet", "truck 1", "POINT", "33.5", "-112.2"}, tr.Calls()[1].Args)
}

func TestRunShellQuitAndEOF(t *testing.T) {
	tr := t38testing.NewRecordingTransport()
	c, err := client.NewClient(common.DefaultClientConfig(), tr)
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	le := newScannerEditor(strings.NewReader("quit\nping\n"), &out)
	require.NoError(t, runShell(context.Background(), c, le, &out, &out, "json"))
	require.Len(t, tr.Calls(), 1)
	assert.Equal(t, "QUIT", tr.Calls()[0].Name)

	// end of input leaves the shell too
	le = newScannerEditor(strings.NewReader("ping"), &out)
	require.NoError(t, runShell(context.Background(), c, le, &out, &out, "json"))
	assert.Len(t, tr.Calls(), 2)
}

func TestRunShellYAML(t *testing.T) {
	tr := t38testing.NewRecordingTransport()
	tr.Server = t38testing.NewServer()
	c, err := client.NewClient(common.DefaultClientConfig(), tr)
	require.NoError(t, err)
	defer c.Close()

	var out, errOut bytes.Buffer
	le := newScannerEditor(strings.NewReader("ping\nget fleet missing\n"), &out)
	require.NoError(t, runShell(context.Background(), c, le, &out, &errOut, "yaml"))

	assert.Contains(t, out.String(), "ping: pong")
	assert.NotContains(t, out.String(), "elapsed")
	assert.Contains(t, errOut.String(), "key not found")
}
