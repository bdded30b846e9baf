package common

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/geojson"
	"testing"
)

func TestBuildSetLocations(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		opts *SetOptions
		want []string
	}{
		{"Point1", Coordinates(33), nil, []string{"fleet", "truck1", "POINT", "33"}},
		{"Point2", Coordinates(33.5123, -112.2693), nil, []string{"fleet", "truck1", "POINT", "33.5123", "-112.2693"}},
		{"Point3", Coordinates(33.5123, -112.2693, 120), nil, []string{"fleet", "truck1", "POINT", "33.5123", "-112.2693", "120"}},
		{"Bounds", Coordinates(33, -112, 34, -111), nil, []string{"fleet", "truck1", "BOUNDS", "33", "-112", "34", "-111"}},
		{"PointLocation", PointLocation(1.5, 2.5), nil, []string{"fleet", "truck1", "POINT", "1.5", "2.5"}},
		{"PointZLocation", PointZLocation(1, 2, 3), nil, []string{"fleet", "truck1", "POINT", "1", "2", "3"}},
		{"BoundsLocation", BoundsLocation(1, 2, 3, 4), nil, []string{"fleet", "truck1", "BOUNDS", "1", "2", "3", "4"}},
		{"HashDefault", StringLocation("9tbnthxzr"), nil, []string{"fleet", "truck1", "HASH", "9tbnthxzr"}},
		{"HashExplicit", StringLocation("9tbnthxzr"), &SetOptions{Type: TypeHash}, []string{"fleet", "truck1", "HASH", "9tbnthxzr"}},
		{"String", StringLocation("hello"), &SetOptions{Type: TypeString}, []string{"fleet", "truck1", "STRING", `"hello"`}},
		{"GeoJSON", mustGeoJSON(t, `{"type":"Point","coordinates":[-112.2693,33.5123]}`), nil, []string{"fleet", "truck1", `{"type":"Point","coordinates":[-112.2693,33.5123]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := BuildSet("fleet", "truck1", tt.loc, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, CmdSet, cmd.Name)
			assert.Equal(t, tt.want, cmd.StringArgs())
		})
	}
}

func TestBuildSetInvalidLocation(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
	}{
		{"NoCoordinates", Coordinates()},
		{"FiveCoordinates", Coordinates(1, 2, 3, 4, 5)},
		{"SixCoordinates", Coordinates(1, 2, 3, 4, 5, 6)},
		{"ZeroValue", Location{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := BuildSet("fleet", "truck1", tt.loc, &SetOptions{Fields: []Field{{Name: "speed", Value: 1}}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.True(t, IsInvalidArgument(err))
			assert.False(t, IsTransport(err))
			assert.Empty(t, cmd.Name)
		})
	}
}

func TestBuildSetFieldOrder(t *testing.T) {
	opts := &SetOptions{
		Fields: []Field{
			{Name: "speed", Value: 90},
			{Name: "age", Value: 21.5},
			{Name: "weight", Value: -3},
		},
	}

	cmd, err := BuildSet("fleet", "truck1", Coordinates(33, -112), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"fleet", "truck1",
		"FIELD", "speed", "90",
		"FIELD", "age", "21.5",
		"FIELD", "weight", "-3",
		"POINT", "33", "-112",
	}, cmd.StringArgs())
}

func TestBuildSetOptions(t *testing.T) {
	tests := []struct {
		name string
		opts *SetOptions
		want []string
	}{
		{"ExpirePositive", &SetOptions{Expire: 120}, []string{"fleet", "truck1", "EX", "120", "POINT", "1", "2"}},
		{"ExpireZero", &SetOptions{Expire: 0}, []string{"fleet", "truck1", "POINT", "1", "2"}},
		{"ExpireNegative", &SetOptions{Expire: -5}, []string{"fleet", "truck1", "POINT", "1", "2"}},
		{"NX", &SetOptions{OnlyIfNotExists: true}, []string{"fleet", "truck1", "NX", "POINT", "1", "2"}},
		{"XX", &SetOptions{OnlyIfExists: true}, []string{"fleet", "truck1", "XX", "POINT", "1", "2"}},
		{"All", &SetOptions{
			Fields:          []Field{{Name: "speed", Value: 5}},
			Expire:          10,
			OnlyIfNotExists: true,
			OnlyIfExists:    true,
		}, []string{"fleet", "truck1", "FIELD", "speed", "5", "EX", "10", "NX", "XX", "POINT", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := BuildSet("fleet", "truck1", Coordinates(1, 2), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.StringArgs())
		})
	}
}

func TestBuildSetStringQuoting(t *testing.T) {
	// the value is wrapped as is, inner quotes are not escaped
	cmd, err := BuildSet("notes", "n1", StringLocation(`say "hi"`), &SetOptions{Type: TypeString})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "n1", "STRING", `"say "hi""`}, cmd.StringArgs())
}

func TestBuildGet(t *testing.T) {
	tests := []struct {
		name string
		opts *GetOptions
		want []string
	}{
		{"Plain", nil, []string{"fleet", "truck1"}},
		{"Empty", &GetOptions{}, []string{"fleet", "truck1"}},
		{"WithFields", &GetOptions{WithFields: true}, []string{"fleet", "truck1", "WITHFIELDS"}},
		{"Hash", &GetOptions{Type: OutputHash, Precision: 6}, []string{"fleet", "truck1", "HASH", "6"}},
		{"LowerCaseIsVerbatim", &GetOptions{Type: "hash", Precision: 6}, []string{"fleet", "truck1", "hash"}},
		{"HashNoPrecision", &GetOptions{Type: OutputHash}, []string{"fleet", "truck1", "HASH"}},
		{"Point", &GetOptions{Type: OutputPoint}, []string{"fleet", "truck1", "POINT"}},
		{"Bounds", &GetOptions{Type: OutputBounds}, []string{"fleet", "truck1", "BOUNDS"}},
		{"Object", &GetOptions{Type: OutputObject}, []string{"fleet", "truck1", "OBJECT"}},
		{"Verbatim", &GetOptions{Type: "point"}, []string{"fleet", "truck1", "point"}},
		{"WithFieldsPoint", &GetOptions{WithFields: true, Type: OutputPoint}, []string{"fleet", "truck1", "WITHFIELDS", "POINT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := BuildGet("fleet", "truck1", tt.opts)
			assert.Equal(t, CmdGet, cmd.Name)
			assert.Equal(t, tt.want, cmd.StringArgs())
		})
	}
}

func TestBuildGetHashKeepsIntPrecision(t *testing.T) {
	cmd := BuildGet("fleet", "truck1", &GetOptions{Type: OutputHash, Precision: 6})
	assert.Equal(t, []any{"fleet", "truck1", "HASH", 6}, cmd.Args)
}

func TestPassThroughCommands(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		wantName string
		wantArgs []string
	}{
		{"Ping", NewPingCommand(), "PING", []string{}},
		{"Quit", NewQuitCommand(), "QUIT", []string{}},
		{"Server", NewServerCommand(), "SERVER", []string{}},
		{"GC", NewGCCommand(), "GC", []string{}},
		{"ConfigGet", NewConfigGetCommand("maxmemory"), "CONFIG", []string{"GET", "maxmemory"}},
		{"ConfigSet", NewConfigSetCommand("maxmemory", "1gb"), "CONFIG", []string{"SET", "maxmemory", "1gb"}},
		{"ConfigRewrite", NewConfigRewriteCommand(), "CONFIG", []string{"REWRITE"}},
		{"FlushDB", NewFlushDBCommand(), "FLUSHDB", []string{}},
		{"ReadOnlyYes", NewReadOnlyCommand(true), "READONLY", []string{"yes"}},
		{"ReadOnlyNo", NewReadOnlyCommand(false), "READONLY", []string{"no"}},
		{"Output", NewOutputCommand("json"), "OUTPUT", []string{"json"}},
		{"Bounds", NewBoundsCommand("fleet"), "BOUNDS", []string{"fleet"}},
		{"Expire", NewExpireCommand("fleet", "truck1", 10), "EXPIRE", []string{"fleet", "truck1", "10"}},
		{"TTL", NewTTLCommand("fleet", "truck1"), "TTL", []string{"fleet", "truck1"}},
		{"Persist", NewPersistCommand("fleet", "truck1"), "PERSIST", []string{"fleet", "truck1"}},
		{"Keys", NewKeysCommand("*"), "KEYS", []string{"*"}},
		{"FSet", NewFSetCommand("fleet", "truck1", "speed", 16.5), "FSET", []string{"fleet", "truck1", "speed", "16.5"}},
		{"Del", NewDelCommand("fleet", "truck1"), "DEL", []string{"fleet", "truck1"}},
		{"PDel", NewPDelCommand("fleet", "truck*"), "PDEL", []string{"fleet", "truck*"}},
		{"Drop", NewDropCommand("fleet"), "DROP", []string{"fleet"}},
		{"JSet", NewJSetCommand("user", "901", "name.first", "Tom"), "JSET", []string{"user", "901", "name.first", "Tom"}},
		{"JDel", NewJDelCommand("user", "901", "name.first"), "JDEL", []string{"user", "901", "name.first"}},
		{"Scan", NewScanCommand("fleet"), "SCAN", []string{"fleet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.cmd.Name)
			assert.Equal(t, tt.wantArgs, tt.cmd.StringArgs())
		})
	}
}

func TestVariadicCommands(t *testing.T) {
	t.Run("Stats", func(t *testing.T) {
		cmd, err := NewStatsCommand("fleet", "props")
		require.NoError(t, err)
		assert.Equal(t, "STATS", cmd.Name)
		assert.Equal(t, []string{"fleet", "props"}, cmd.StringArgs())
	})

	t.Run("StatsWithoutKeys", func(t *testing.T) {
		_, err := NewStatsCommand()
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("JGet", func(t *testing.T) {
		cmd, err := NewJGetCommand("user", "901", "name", "age")
		require.NoError(t, err)
		assert.Equal(t, "JGET", cmd.Name)
		assert.Equal(t, []string{"user", "901", "name", "age"}, cmd.StringArgs())
	})

	t.Run("JGetWithoutPaths", func(t *testing.T) {
		_, err := NewJGetCommand("user", "901")
		assert.True(t, IsInvalidArgument(err))
	})
}

func TestCommandLine(t *testing.T) {
	cmd, err := BuildSet("fleet", "truck 1", StringLocation("hi"), &SetOptions{Type: TypeString})
	require.NoError(t, err)
	assert.Equal(t, `SET fleet "truck 1" STRING "\"hi\""`, cmd.Line())
	assert.Equal(t, cmd.Line(), cmd.String())

	assert.Equal(t, `KEYS ""`, NewKeysCommand("").Line())
	assert.Equal(t, "PING", NewPingCommand().Line())
}

func TestFormatArg(t *testing.T) {
	assert.Equal(t, "abc", FormatArg("abc"))
	assert.Equal(t, "42", FormatArg(42))
	assert.Equal(t, "42", FormatArg(int64(42)))
	assert.Equal(t, "0.1", FormatArg(0.1))
	assert.Equal(t, "-112.2693", FormatArg(-112.2693))
	assert.Equal(t, "100000000", FormatArg(1e8))
	assert.Equal(t, "true", FormatArg(true))
	assert.Equal(t, "raw", FormatArg([]byte("raw")))
}

func TestGeoJSONLocation(t *testing.T) {
	t.Run("Map", func(t *testing.T) {
		loc, err := GeoJSONLocation(map[string]any{"type": "Point", "coordinates": []float64{1, 2}})
		require.NoError(t, err)
		assert.Equal(t, LocationGeoJSON, loc.Kind())

		cmd, err := BuildSet("k", "i", loc, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "i", `{"coordinates":[1,2],"type":"Point"}`}, cmd.StringArgs())
	})

	t.Run("InvalidString", func(t *testing.T) {
		_, err := GeoJSONLocation("{not json")
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Object", func(t *testing.T) {
		obj, err := geojson.Parse(`{"type":"Point","coordinates":[-112.2693,33.5123]}`, nil)
		require.NoError(t, err)
		loc := ObjectLocation(obj)
		assert.Equal(t, LocationGeoJSON, loc.Kind())

		cmd, err := BuildSet("fleet", "truck1", loc, nil)
		require.NoError(t, err)
		args := cmd.StringArgs()
		require.Len(t, args, 3)
		assert.JSONEq(t, `{"type":"Point","coordinates":[-112.2693,33.5123]}`, args[2])
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustGeoJSON(t *testing.T, data string) Location {
	t.Helper()
	loc, err := GeoJSONLocation(data)
	require.NoError(t, err)
	return loc
}
