package obj

import (
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantKind common.LocationKind
		wantType common.ObjectType
		wantArgs []string
	}{
		{"Point", []string{"point", "33.5", "-112.2"}, common.LocationPoint, "", []string{"k", "i", "POINT", "33.5", "-112.2"}},
		{"PointZ", []string{"POINT", "1", "2", "3"}, common.LocationPoint, "", []string{"k", "i", "POINT", "1", "2", "3"}},
		{"Bounds", []string{"bounds", "1", "2", "3", "4"}, common.LocationBounds, "", []string{"k", "i", "BOUNDS", "1", "2", "3", "4"}},
		{"Hash", []string{"hash", "9tbnt"}, common.LocationString, common.TypeHash, []string{"k", "i", "HASH", "9tbnt"}},
		{"String", []string{"string", "hi"}, common.LocationString, common.TypeString, []string{"k", "i", "STRING", `"hi"`}},
		{"Object", []string{"object", `{"type":"Point","coordinates":[1,2]}`}, common.LocationGeoJSON, "", []string{"k", "i", `{"type":"Point","coordinates":[1,2]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, typ, err := parseLocation(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, loc.Kind())
			assert.Equal(t, tt.wantType, typ)

			cmd, err := common.BuildSet("k", "i", loc, &common.SetOptions{Type: typ})
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, cmd.StringArgs())
		})
	}
}

func TestParseLocationErrors(t *testing.T) {
	tests := [][]string{
		{"point", "1"},
		{"point", "1", "2", "3", "4"},
		{"point", "a", "b"},
		{"bounds", "1", "2", "3"},
		{"hash"},
		{"string", "a", "b"},
		{"object", "{broken"},
		{"circle", "1", "2"},
	}

	for _, args := range tests {
		_, _, err := parseLocation(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"speed=90", "age=1.5", "weight=-3"})
	require.NoError(t, err)
	assert.Equal(t, []common.Field{
		{Name: "speed", Value: 90},
		{Name: "age", Value: 1.5},
		{Name: "weight", Value: -3},
	}, fields)

	_, err = parseFields([]string{"speed"})
	assert.Error(t, err)

	_, err = parseFields([]string{"=1"})
	assert.Error(t, err)

	_, err = parseFields([]string{"speed=fast"})
	assert.Error(t, err)
}
