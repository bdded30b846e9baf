package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/mmcloughlin/geohash"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
	"github.com/tidwall/sjson"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Error texts used by the fake server
var (
	errKeyNotFound              = errors.New("key not found")
	errIDNotFound               = errors.New("id not found")
	errIDAlreadyExists          = errors.New("id already exists")
	errInvalidNumberOfArguments = errors.New("invalid number of arguments")
	errReadOnly                 = errors.New("read only")
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

func errInvalidArgument(arg string) error {
	return fmt.Errorf("invalid argument '%s'", arg)
}

// --------------------------------------------------------------------------
// In memory server
// --------------------------------------------------------------------------

// object is a single stored object
type object struct {
	geo     geojson.Object // nil for string objects
	str     string
	fields  map[string]float64
	expires time.Time // zero = no expiry
}

func (o *object) json() string {
	if o.geo != nil {
		return o.geo.JSON()
	}
	return jsonString(o.str)
}

// Server is an in memory emulation of the subset of the server commands the client uses.
// Every reply is a JSON envelope, the same text a real server sends in JSON output mode.
// It is used by the fake RESP and HTTP servers of this package and is safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	cols     map[string]map[string]*object
	config   map[string]string
	readOnly bool
	received [][]string
	now      func() time.Time
}

// NewServer creates an empty server
func NewServer() *Server {
	return &Server{
		cols: make(map[string]map[string]*object),
		config: map[string]string{
			"maxmemory":      "0",
			"autogc":         "0",
			"keepalive":      "300",
			"protected-mode": "yes",
			"requirepass":    "",
		},
		now: time.Now,
	}
}

// Received returns a copy of all commands the server handled, in order
func (s *Server) Received() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.received))
	for i, args := range s.received {
		out[i] = append([]string(nil), args...)
	}
	return out
}

// Handle executes a single command (name first) and returns the JSON reply
func (s *Server) Handle(args []string) string {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = append(s.received, append([]string(nil), args...))
	if len(args) == 0 {
		return errorReply(errInvalidNumberOfArguments, start)
	}

	name := strings.ToLower(args[0])
	if s.readOnly && isWriteCommand(name) {
		return errorReply(errReadOnly, start)
	}

	payload, err := s.dispatch(name, args[1:])
	if err != nil {
		return errorReply(err, start)
	}
	return okReply(payload, start)
}

func (s *Server) dispatch(name string, vs []string) (string, error) {
	switch name {
	case "ping":
		return `"ping":"pong"`, nil
	case "quit", "gc", "output":
		return "", nil
	case "server":
		return s.cmdServer()
	case "config":
		return s.cmdConfig(vs)
	case "flushdb":
		s.cols = make(map[string]map[string]*object)
		return "", nil
	case "readonly":
		return s.cmdReadOnly(vs)
	case "bounds":
		return s.cmdBounds(vs)
	case "expire":
		return s.cmdExpire(vs)
	case "ttl":
		return s.cmdTTL(vs)
	case "persist":
		return s.cmdPersist(vs)
	case "keys":
		return s.cmdKeys(vs)
	case "set":
		return s.cmdSet(vs)
	case "fset":
		return s.cmdFSet(vs)
	case "del":
		return s.cmdDel(vs)
	case "pdel":
		return s.cmdPDel(vs)
	case "get":
		return s.cmdGet(vs)
	case "drop":
		return s.cmdDrop(vs)
	case "stats":
		return s.cmdStats(vs)
	case "jset":
		return s.cmdJSet(vs)
	case "jget":
		return s.cmdJGet(vs)
	case "jdel":
		return s.cmdJDel(vs)
	case "scan":
		return s.cmdScan(vs)
	default:
		return "", fmt.Errorf("unknown command '%s'", name)
	}
}

// --------------------------------------------------------------------------
// Server commands
// --------------------------------------------------------------------------

func (s *Server) cmdServer() (string, error) {
	numObjects := 0
	for _, col := range s.cols {
		numObjects += len(col)
	}
	return fmt.Sprintf(`"stats":{"num_collections":%d,"num_objects":%d,"read_only":%t}`,
		len(s.cols), numObjects, s.readOnly), nil
}

func (s *Server) cmdConfig(vs []string) (string, error) {
	if len(vs) == 0 {
		return "", errInvalidNumberOfArguments
	}
	switch strings.ToLower(vs[0]) {
	case "get":
		if len(vs) != 2 {
			return "", errInvalidNumberOfArguments
		}
		value, ok := s.config[vs[1]]
		if !ok {
			return "", fmt.Errorf("unsupported CONFIG parameter: %s", vs[1])
		}
		return `"properties":{` + jsonString(vs[1]) + ":" + jsonString(value) + "}", nil
	case "set":
		if len(vs) != 3 {
			return "", errInvalidNumberOfArguments
		}
		if _, ok := s.config[vs[1]]; !ok {
			return "", fmt.Errorf("unsupported CONFIG parameter: %s", vs[1])
		}
		s.config[vs[1]] = vs[2]
		return "", nil
	case "rewrite":
		if len(vs) != 1 {
			return "", errInvalidNumberOfArguments
		}
		return "", nil
	default:
		return "", errInvalidArgument(vs[0])
	}
}

func (s *Server) cmdReadOnly(vs []string) (string, error) {
	if len(vs) != 1 {
		return "", errInvalidNumberOfArguments
	}
	switch strings.ToLower(vs[0]) {
	case "yes":
		s.readOnly = true
	case "no":
		s.readOnly = false
	default:
		return "", errInvalidArgument(vs[0])
	}
	return "", nil
}

// --------------------------------------------------------------------------
// Key commands
// --------------------------------------------------------------------------

func (s *Server) cmdBounds(vs []string) (string, error) {
	if len(vs) != 1 {
		return "", errInvalidNumberOfArguments
	}
	col := s.col(vs[0])
	if col == nil {
		return "", errKeyNotFound
	}
	var rect geometry.Rect
	first := true
	for _, o := range col {
		if o.geo == nil {
			continue
		}
		r := o.geo.Rect()
		if first {
			rect = r
			first = false
			continue
		}
		rect.Min.X = min(rect.Min.X, r.Min.X)
		rect.Min.Y = min(rect.Min.Y, r.Min.Y)
		rect.Max.X = max(rect.Max.X, r.Max.X)
		rect.Max.Y = max(rect.Max.Y, r.Max.Y)
	}
	return `"bounds":` + geojson.NewRect(rect).JSON(), nil
}

func (s *Server) cmdKeys(vs []string) (string, error) {
	if len(vs) != 1 {
		return "", errInvalidNumberOfArguments
	}
	keys := make([]string, 0, len(s.cols))
	for key := range s.cols {
		if s.col(key) != nil && match.Match(key, vs[0]) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	data, _ := json.Marshal(keys)
	return `"keys":` + string(data), nil
}

func (s *Server) cmdDrop(vs []string) (string, error) {
	if len(vs) != 1 {
		return "", errInvalidNumberOfArguments
	}
	delete(s.cols, vs[0])
	return "", nil
}

func (s *Server) cmdStats(vs []string) (string, error) {
	if len(vs) == 0 {
		return "", errInvalidNumberOfArguments
	}
	stats := make([]string, len(vs))
	for i, key := range vs {
		col := s.col(key)
		if col == nil {
			stats[i] = "null"
			continue
		}
		numPoints := 0
		for _, o := range col {
			if _, ok := o.geo.(*geojson.Point); ok {
				numPoints++
			}
		}
		stats[i] = fmt.Sprintf(`{"num_objects":%d,"num_points":%d}`, len(col), numPoints)
	}
	return `"stats":[` + strings.Join(stats, ",") + "]", nil
}

func (s *Server) cmdScan(vs []string) (string, error) {
	if len(vs) != 1 {
		return "", errInvalidNumberOfArguments
	}
	col := s.col(vs[0])
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString(`"objects":[`)
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		o := col[id]
		sb.WriteString(`{"id":` + jsonString(id) + `,"object":` + o.json())
		if len(o.fields) > 0 {
			sb.WriteString(`,"fields":` + fieldsJSON(o.fields))
		}
		sb.WriteByte('}')
	}
	sb.WriteString(fmt.Sprintf(`],"count":%d,"cursor":0`, len(ids)))
	return sb.String(), nil
}

// --------------------------------------------------------------------------
// Object commands
// --------------------------------------------------------------------------

func (s *Server) cmdSet(vs []string) (string, error) {
	if len(vs) < 3 {
		return "", errInvalidNumberOfArguments
	}
	key, id := vs[0], vs[1]
	vs = vs[2:]

	fields := map[string]float64{}
	var ex float64
	var nx, xx bool
	for len(vs) > 0 {
		switch strings.ToLower(vs[0]) {
		case "field":
			if len(vs) < 3 {
				return "", errInvalidNumberOfArguments
			}
			value, err := strconv.ParseFloat(vs[2], 64)
			if err != nil {
				return "", errInvalidArgument(vs[2])
			}
			fields[vs[1]] = value
			vs = vs[3:]
			continue
		case "ex":
			if len(vs) < 2 {
				return "", errInvalidNumberOfArguments
			}
			value, err := strconv.ParseFloat(vs[1], 64)
			if err != nil {
				return "", errInvalidArgument(vs[1])
			}
			ex = value
			vs = vs[2:]
			continue
		case "nx":
			if xx {
				return "", errInvalidArgument(vs[0])
			}
			nx = true
			vs = vs[1:]
			continue
		case "xx":
			if nx {
				return "", errInvalidArgument(vs[0])
			}
			xx = true
			vs = vs[1:]
			continue
		}
		break
	}

	obj, err := parseObject(vs)
	if err != nil {
		return "", err
	}

	_, exists := s.lookup(key, id)
	if nx && exists {
		return "", errIDAlreadyExists
	}
	if xx && !exists {
		return "", errIDNotFound
	}

	obj.fields = fields
	if ex > 0 {
		obj.expires = s.now().Add(time.Duration(ex * float64(time.Second)))
	}
	col := s.cols[key]
	if col == nil {
		col = make(map[string]*object)
		s.cols[key] = col
	}
	col[id] = obj
	return "", nil
}

// parseObject parses the location part of SET
func parseObject(vs []string) (*object, error) {
	if len(vs) == 0 {
		return nil, errInvalidNumberOfArguments
	}
	typ := strings.ToLower(vs[0])
	switch typ {
	case "point":
		coords, err := parseFloats(vs[1:])
		if err != nil {
			return nil, err
		}
		switch len(coords) {
		case 2:
			return &object{geo: geojson.NewPoint(geometry.Point{X: coords[1], Y: coords[0]})}, nil
		case 3:
			return &object{geo: geojson.NewPointZ(geometry.Point{X: coords[1], Y: coords[0]}, coords[2])}, nil
		default:
			return nil, errInvalidNumberOfArguments
		}
	case "bounds":
		coords, err := parseFloats(vs[1:])
		if err != nil {
			return nil, err
		}
		if len(coords) != 4 {
			return nil, errInvalidNumberOfArguments
		}
		return &object{geo: geojson.NewRect(geometry.Rect{
			Min: geometry.Point{X: coords[1], Y: coords[0]},
			Max: geometry.Point{X: coords[3], Y: coords[2]},
		})}, nil
	case "hash":
		if len(vs) != 2 {
			return nil, errInvalidNumberOfArguments
		}
		if !validGeohash(vs[1]) {
			return nil, errInvalidArgument(vs[1])
		}
		lat, lng := geohash.DecodeCenter(vs[1])
		return &object{geo: geojson.NewPoint(geometry.Point{X: lng, Y: lat})}, nil
	case "string":
		if len(vs) != 2 {
			return nil, errInvalidNumberOfArguments
		}
		return &object{str: vs[1]}, nil
	case "object":
		if len(vs) != 2 {
			return nil, errInvalidNumberOfArguments
		}
		return parseGeoJSON(vs[1])
	default:
		// a bare GeoJSON argument
		if len(vs) != 1 || !strings.HasPrefix(strings.TrimSpace(vs[0]), "{") {
			return nil, errInvalidArgument(vs[0])
		}
		return parseGeoJSON(vs[0])
	}
}

func parseGeoJSON(data string) (*object, error) {
	geo, err := geojson.Parse(data, nil)
	if err != nil {
		return nil, err
	}
	return &object{geo: geo}, nil
}

func (s *Server) cmdFSet(vs []string) (string, error) {
	if len(vs) != 4 {
		return "", errInvalidNumberOfArguments
	}
	if s.col(vs[0]) == nil {
		return "", errKeyNotFound
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	value, err := strconv.ParseFloat(vs[3], 64)
	if err != nil {
		return "", errInvalidArgument(vs[3])
	}
	if o.fields == nil {
		o.fields = map[string]float64{}
	}
	o.fields[vs[2]] = value
	return "", nil
}

func (s *Server) cmdGet(vs []string) (string, error) {
	if len(vs) < 2 {
		return "", errInvalidNumberOfArguments
	}
	if s.col(vs[0]) == nil {
		return "", errKeyNotFound
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	vs = vs[2:]

	withFields := false
	if len(vs) > 0 && strings.ToLower(vs[0]) == "withfields" {
		withFields = true
		vs = vs[1:]
	}

	typ := "object"
	if len(vs) > 0 {
		typ = strings.ToLower(vs[0])
		vs = vs[1:]
	}

	var sb strings.Builder
	switch typ {
	case "object":
		sb.WriteString(`"object":` + o.json())
	case "point":
		if o.geo == nil {
			return "", errInvalidArgument(typ)
		}
		sb.WriteString(`"point":` + pointJSON(o.geo))
	case "bounds":
		if o.geo == nil {
			return "", errInvalidArgument(typ)
		}
		r := o.geo.Rect()
		sb.WriteString(fmt.Sprintf(`"bounds":{"sw":{"lat":%s,"lon":%s},"ne":{"lat":%s,"lon":%s}}`,
			formatFloat(r.Min.Y), formatFloat(r.Min.X), formatFloat(r.Max.Y), formatFloat(r.Max.X)))
	case "hash":
		if len(vs) == 0 {
			return "", errInvalidNumberOfArguments
		}
		precision, err := strconv.ParseUint(vs[0], 10, 64)
		if err != nil || precision < 1 || precision > 12 {
			return "", errInvalidArgument(vs[0])
		}
		vs = vs[1:]
		if o.geo == nil {
			return "", errInvalidArgument(typ)
		}
		center := o.geo.Center()
		sb.WriteString(`"hash":` + jsonString(geohash.EncodeWithPrecision(center.Y, center.X, uint(precision))))
	default:
		return "", errInvalidArgument(typ)
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	if withFields && len(o.fields) > 0 {
		sb.WriteString(`,"fields":` + fieldsJSON(o.fields))
	}
	return sb.String(), nil
}

func (s *Server) cmdDel(vs []string) (string, error) {
	if len(vs) != 2 {
		return "", errInvalidNumberOfArguments
	}
	if col := s.col(vs[0]); col != nil {
		delete(col, vs[1])
	}
	return "", nil
}

func (s *Server) cmdPDel(vs []string) (string, error) {
	if len(vs) != 2 {
		return "", errInvalidNumberOfArguments
	}
	col := s.col(vs[0])
	for id := range col {
		if match.Match(id, vs[1]) {
			delete(col, id)
		}
	}
	return "", nil
}

func (s *Server) cmdExpire(vs []string) (string, error) {
	if len(vs) != 3 {
		return "", errInvalidNumberOfArguments
	}
	seconds, err := strconv.ParseFloat(vs[2], 64)
	if err != nil {
		return "", errInvalidArgument(vs[2])
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	o.expires = s.now().Add(time.Duration(seconds * float64(time.Second)))
	return "", nil
}

func (s *Server) cmdTTL(vs []string) (string, error) {
	if len(vs) != 2 {
		return "", errInvalidNumberOfArguments
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	if o.expires.IsZero() {
		return `"ttl":-1`, nil
	}
	ttl := max(o.expires.Sub(s.now()).Seconds(), 0)
	return `"ttl":` + formatFloat(ttl), nil
}

func (s *Server) cmdPersist(vs []string) (string, error) {
	if len(vs) != 2 {
		return "", errInvalidNumberOfArguments
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	o.expires = time.Time{}
	return "", nil
}

// --------------------------------------------------------------------------
// JSON commands
// --------------------------------------------------------------------------

func (s *Server) cmdJSet(vs []string) (string, error) {
	if len(vs) != 4 {
		return "", errInvalidNumberOfArguments
	}
	key, id, path, value := vs[0], vs[1], vs[2], vs[3]

	doc := "{}"
	if o, ok := s.lookup(key, id); ok {
		doc = s.document(o)
	}

	var err error
	if gjson.Valid(value) {
		doc, err = sjson.SetRaw(doc, path, value)
	} else {
		doc, err = sjson.Set(doc, path, value)
	}
	if err != nil {
		return "", err
	}
	s.store(key, id, doc)
	return "", nil
}

func (s *Server) cmdJGet(vs []string) (string, error) {
	if len(vs) < 3 {
		return "", errInvalidNumberOfArguments
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	doc := s.document(o)
	if len(vs) == 3 {
		res := gjson.Get(doc, vs[2])
		if !res.Exists() {
			return `"value":null`, nil
		}
		return `"value":` + res.Raw, nil
	}
	values := make([]string, 0, len(vs)-2)
	for _, res := range gjson.GetMany(doc, vs[2:]...) {
		if !res.Exists() {
			values = append(values, "null")
			continue
		}
		values = append(values, res.Raw)
	}
	return `"value":[` + strings.Join(values, ",") + "]", nil
}

func (s *Server) cmdJDel(vs []string) (string, error) {
	if len(vs) != 3 {
		return "", errInvalidNumberOfArguments
	}
	o, ok := s.lookup(vs[0], vs[1])
	if !ok {
		return "", errIDNotFound
	}
	doc, err := sjson.Delete(s.document(o), vs[2])
	if err != nil {
		return "", err
	}
	s.store(vs[0], vs[1], doc)
	return "", nil
}

// document returns the JSON document of an object. String objects holding JSON are
// returned as is, so JSET on a new id followed by JGET works.
func (s *Server) document(o *object) string {
	if o.geo != nil {
		return o.geo.JSON()
	}
	if gjson.Valid(o.str) {
		return o.str
	}
	return "{}"
}

// store saves doc as GeoJSON if it parses as such, otherwise as a string object
func (s *Server) store(key, id, doc string) {
	o := &object{str: doc}
	if geo, err := geojson.Parse(doc, nil); err == nil {
		o = &object{geo: geo}
	}
	if old, ok := s.lookup(key, id); ok {
		o.fields = old.fields
		o.expires = old.expires
	}
	col := s.cols[key]
	if col == nil {
		col = make(map[string]*object)
		s.cols[key] = col
	}
	col[id] = o
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// col returns the collection of key with expired objects removed, nil if it is empty
func (s *Server) col(key string) map[string]*object {
	col := s.cols[key]
	now := s.now()
	for id, o := range col {
		if !o.expires.IsZero() && !now.Before(o.expires) {
			delete(col, id)
		}
	}
	if len(col) == 0 {
		delete(s.cols, key)
		return nil
	}
	return col
}

func (s *Server) lookup(key, id string) (*object, bool) {
	col := s.col(key)
	if col == nil {
		return nil, false
	}
	o, ok := col[id]
	return o, ok
}

func isWriteCommand(name string) bool {
	switch name {
	case "set", "fset", "del", "pdel", "drop", "flushdb", "expire", "persist", "jset", "jdel":
		return true
	}
	return false
}

func okReply(payload string, start time.Time) string {
	if payload == "" {
		return `{"ok":true,"elapsed":` + jsonString(time.Since(start).String()) + "}"
	}
	return `{"ok":true,` + payload + `,"elapsed":` + jsonString(time.Since(start).String()) + "}"
}

func errorReply(err error, start time.Time) string {
	return `{"ok":false,"err":` + jsonString(err.Error()) + `,"elapsed":` + jsonString(time.Since(start).String()) + "}"
}

func pointJSON(geo geojson.Object) string {
	center := geo.Center()
	if p, ok := geo.(*geojson.Point); ok && p.Z() != 0 {
		return fmt.Sprintf(`{"lat":%s,"lon":%s,"z":%s}`, formatFloat(center.Y), formatFloat(center.X), formatFloat(p.Z()))
	}
	return fmt.Sprintf(`{"lat":%s,"lon":%s}`, formatFloat(center.Y), formatFloat(center.X))
}

func fieldsJSON(fields map[string]float64) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = jsonString(name) + ":" + formatFloat(fields[name])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func validGeohash(hash string) bool {
	if hash == "" || len(hash) > 12 {
		return false
	}
	for _, r := range hash {
		if !strings.ContainsRune(geohashAlphabet, r) {
			return false
		}
	}
	return true
}

func parseFloats(vs []string) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errInvalidArgument(v)
		}
		out[i] = f
	}
	return out, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
