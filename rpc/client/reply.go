package client

import (
	"encoding/json"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/tidwall/geojson"
	"github.com/tidwall/gjson"
	"strings"
)

// Reserved envelope keys, never part of a projected envelope
const (
	keyOk      = "ok"
	keyErr     = "err"
	keyElapsed = "elapsed"
)

// --------------------------------------------------------------------------
// Projection
// --------------------------------------------------------------------------

type projectionKind uint8

const (
	projectEnvelope projectionKind = iota
	projectRaw
	projectProperty
)

// Projection describes how a reply is turned into a Result.
// The zero value projects the envelope.
type Projection struct {
	kind projectionKind
	name string
}

var (
	// ProjectRaw returns the reply text unmodified, without parsing it
	ProjectRaw = Projection{kind: projectRaw}
	// ProjectEnvelope returns the whole reply object without the ok and elapsed keys
	ProjectEnvelope = Projection{kind: projectEnvelope}
)

// ProjectProperty returns a single top level property of the reply
func ProjectProperty(name string) Projection {
	return Projection{kind: projectProperty, name: name}
}

func (p Projection) String() string {
	switch p.kind {
	case projectRaw:
		return "raw"
	case projectProperty:
		return "property(" + p.name + ")"
	default:
		return "envelope"
	}
}

// --------------------------------------------------------------------------
// Interpreter
// --------------------------------------------------------------------------

// Interpret decodes a raw reply and projects it:
//
//   - ProjectRaw returns the reply as is, nothing is parsed
//   - a reply that is not valid JSON fails with ErrMalformedResponse
//   - a reply with a falsy ok fails with ErrServer (the server's err text, or the raw reply)
//   - ProjectEnvelope returns a new object holding every key except ok and elapsed
//   - ProjectProperty returns that property; a missing property is not an error, see Result.Exists
func Interpret(raw string, p Projection) (Result, error) {
	if p.kind == projectRaw {
		return Result{text: raw, exists: true}, nil
	}

	if !gjson.Valid(raw) {
		return Result{}, common.NewMalformedResponseError(raw, nil)
	}

	reply := gjson.Parse(raw)
	if !reply.Get(keyOk).Bool() {
		return Result{}, common.NewServerError(reply.Get(keyErr).String(), raw)
	}

	switch p.kind {
	case projectProperty:
		return property(reply, p.name), nil
	default:
		return envelope(reply), nil
	}
}

// envelope copies every top level key except the reserved ones into a new object
func envelope(reply gjson.Result) Result {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	reply.ForEach(func(key, value gjson.Result) bool {
		if key.Str == keyOk || key.Str == keyElapsed {
			return true
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(key.Raw)
		sb.WriteByte(':')
		sb.WriteString(value.Raw)
		return true
	})
	sb.WriteByte('}')
	return Result{text: sb.String(), json: true, exists: true}
}

// property looks up a top level key by exact name (no path syntax)
func property(reply gjson.Result, name string) Result {
	res := Result{json: true}
	reply.ForEach(func(key, value gjson.Result) bool {
		if key.Str != name {
			return true
		}
		res.text = value.Raw
		res.exists = true
		return false
	})
	return res
}

// --------------------------------------------------------------------------
// Result
// --------------------------------------------------------------------------

// Result is a projected reply. It holds JSON text, except for results of ProjectRaw
// which hold the reply exactly as received.
type Result struct {
	text   string
	json   bool
	exists bool
}

// Exists reports whether the projected value was present in the reply
func (r Result) Exists() bool {
	return r.exists
}

// Raw returns the projected text, JSON encoded unless ProjectRaw was used
func (r Result) Raw() string {
	return r.text
}

// String returns the value as a string. JSON strings are unquoted, other JSON values are
// returned as JSON text.
func (r Result) String() string {
	if !r.json {
		return r.text
	}
	return r.value().String()
}

// Bool returns the value as a bool
func (r Result) Bool() bool {
	return r.value().Bool()
}

// Float returns the value as a float64
func (r Result) Float() float64 {
	return r.value().Float()
}

// Int returns the value as an int64
func (r Result) Int() int64 {
	return r.value().Int()
}

// Strings returns the elements of an array value as strings
func (r Result) Strings() []string {
	arr := r.value().Array()
	out := make([]string, len(arr))
	for i, v := range arr {
		out[i] = v.String()
	}
	return out
}

// Get returns a nested value addressed by a gjson path
func (r Result) Get(path string) Result {
	v := r.value().Get(path)
	return Result{text: v.Raw, json: true, exists: v.Exists()}
}

// Decode unmarshals the value into v
func (r Result) Decode(v any) error {
	if !r.exists {
		return common.NewMalformedResponseError(r.text, errMissingValue)
	}
	if err := json.Unmarshal([]byte(r.text), v); err != nil {
		return common.NewMalformedResponseError(r.text, err)
	}
	return nil
}

// Map decodes an object value
func (r Result) Map() (map[string]any, error) {
	m := map[string]any{}
	if err := r.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// GeoJSON parses the value as a GeoJSON object
func (r Result) GeoJSON() (geojson.Object, error) {
	if !r.exists {
		return nil, common.NewMalformedResponseError(r.text, errMissingValue)
	}
	obj, err := geojson.Parse(r.text, nil)
	if err != nil {
		return nil, common.NewMalformedResponseError(r.text, err)
	}
	return obj, nil
}

func (r Result) value() gjson.Result {
	if !r.exists {
		return gjson.Result{}
	}
	if !r.json {
		return gjson.Result{Type: gjson.String, Str: r.text, Raw: r.text}
	}
	return gjson.Parse(r.text)
}
