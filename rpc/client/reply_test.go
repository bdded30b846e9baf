package client

import (
	"errors"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/geojson"
	"testing"
)

func TestInterpretProperty(t *testing.T) {
	res, err := Interpret(`{"ok":true,"ping":"pong","elapsed":"12.5µs"}`, ProjectProperty("ping"))
	require.NoError(t, err)
	assert.True(t, res.Exists())
	assert.Equal(t, "pong", res.String())
	assert.Equal(t, `"pong"`, res.Raw())
}

func TestInterpretEnvelope(t *testing.T) {
	raw := `{"ok":true,"object":{"type":"Point","coordinates":[-112.2693,33.5123]},"fields":{"speed":90},"elapsed":"9µs"}`

	for _, p := range []Projection{ProjectEnvelope, {}} {
		res, err := Interpret(raw, p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"object":{"type":"Point","coordinates":[-112.2693,33.5123]},"fields":{"speed":90}}`, res.Raw())
		assert.False(t, res.Get("ok").Exists())
		assert.False(t, res.Get("elapsed").Exists())
		assert.Equal(t, 90.0, res.Get("fields.speed").Float())
	}
}

func TestInterpretEnvelopeKeepsKeyOrder(t *testing.T) {
	res, err := Interpret(`{"ok":true,"b":1,"elapsed":"1µs","a":[1,2]}`, ProjectEnvelope)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[1,2]}`, res.Raw())
}

func TestInterpretEmptyEnvelope(t *testing.T) {
	res, err := Interpret(`{"ok":true,"elapsed":"1µs"}`, ProjectEnvelope)
	require.NoError(t, err)
	assert.Equal(t, `{}`, res.Raw())
}

func TestInterpretRaw(t *testing.T) {
	tests := []string{
		`{"ok":true,"elapsed":"1µs"}`,
		`{"ok":false,"err":"key not found"}`,
		"not json at all",
		"",
	}

	for _, raw := range tests {
		res, err := Interpret(raw, ProjectRaw)
		require.NoError(t, err)
		assert.Equal(t, raw, res.Raw())
		assert.Equal(t, raw, res.String())
	}
}

func TestInterpretMalformed(t *testing.T) {
	tests := []string{"+OK", "not json", `{"ok":true`, ""}

	for _, raw := range tests {
		_, err := Interpret(raw, ProjectEnvelope)
		require.Error(t, err, raw)
		assert.True(t, common.IsMalformedResponse(err))

		var e *common.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, raw, e.Raw)
	}
}

func TestInterpretServerError(t *testing.T) {
	t.Run("WithMessage", func(t *testing.T) {
		_, err := Interpret(`{"ok":false,"err":"key not found","elapsed":"2µs"}`, ProjectProperty("object"))
		require.Error(t, err)
		assert.True(t, common.IsServer(err))

		var e *common.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "key not found", e.Msg)
	})

	t.Run("WithoutMessage", func(t *testing.T) {
		raw := `{"ok":false,"elapsed":"2µs"}`
		_, err := Interpret(raw, ProjectEnvelope)
		assert.True(t, common.IsServer(err))

		var e *common.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "unexpected response", e.Msg)
		assert.Equal(t, raw, e.Raw)
	})

	t.Run("MissingOk", func(t *testing.T) {
		_, err := Interpret(`{"ping":"pong"}`, ProjectProperty("ping"))
		assert.True(t, common.IsServer(err))
	})

	t.Run("NotAnObject", func(t *testing.T) {
		_, err := Interpret(`[1,2,3]`, ProjectEnvelope)
		assert.True(t, common.IsServer(err))
	})
}

func TestInterpretMissingProperty(t *testing.T) {
	res, err := Interpret(`{"ok":true,"elapsed":"1µs"}`, ProjectProperty("stats"))
	require.NoError(t, err)
	assert.False(t, res.Exists())
	assert.Empty(t, res.String())
	assert.Empty(t, res.Strings())

	var v map[string]any
	assert.True(t, common.IsMalformedResponse(res.Decode(&v)))

	_, err = res.GeoJSON()
	assert.True(t, common.IsMalformedResponse(err))
}

func TestInterpretPropertyExactName(t *testing.T) {
	raw := `{"ok":true,"a":{"b":2},"a.b":1}`

	res, err := Interpret(raw, ProjectProperty("a.b"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Int())

	res, err = Interpret(raw, ProjectProperty("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Get("b").Int())
}

func TestInterpretReservedProperties(t *testing.T) {
	res, err := Interpret(`{"ok":true,"elapsed":"3µs"}`, ProjectProperty("ok"))
	require.NoError(t, err)
	assert.True(t, res.Bool())

	res, err = Interpret(`{"ok":true,"elapsed":"3µs"}`, ProjectProperty("elapsed"))
	require.NoError(t, err)
	assert.Equal(t, "3µs", res.String())
}

func TestResultAccessors(t *testing.T) {
	raw := `{"ok":true,"keys":["fleet","props"],"count":3,"ttl":12.5,"flag":true,"object":{"type":"Point","coordinates":[1,2]}}`

	keys, err := Interpret(raw, ProjectProperty("keys"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fleet", "props"}, keys.Strings())

	count, err := Interpret(raw, ProjectProperty("count"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count.Int())

	ttl, err := Interpret(raw, ProjectProperty("ttl"))
	require.NoError(t, err)
	assert.Equal(t, 12.5, ttl.Float())

	flag, err := Interpret(raw, ProjectProperty("flag"))
	require.NoError(t, err)
	assert.True(t, flag.Bool())

	obj, err := Interpret(raw, ProjectProperty("object"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Point","coordinates":[1,2]}`, obj.String())

	m, err := obj.Map()
	require.NoError(t, err)
	assert.Equal(t, "Point", m["type"])

	geo, err := obj.GeoJSON()
	require.NoError(t, err)
	p, ok := geo.(*geojson.Point)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Center().X)
	assert.Equal(t, 2.0, p.Center().Y)

	assert.False(t, obj.Get("nope").Exists())
}

func TestResultDecodeInvalid(t *testing.T) {
	res, err := Interpret(`{"ok":true,"count":"three"}`, ProjectProperty("count"))
	require.NoError(t, err)

	var n int
	err = res.Decode(&n)
	assert.True(t, common.IsMalformedResponse(err))
}

func TestProjectionString(t *testing.T) {
	assert.Equal(t, "raw", ProjectRaw.String())
	assert.Equal(t, "envelope", ProjectEnvelope.String())
	assert.Equal(t, "envelope", Projection{}.String())
	assert.Equal(t, "property(ok)", ProjectProperty("ok").String())
}
