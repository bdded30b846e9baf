package common

import (
	"encoding/json"
	"github.com/mmcloughlin/geohash"
	"github.com/tidwall/geojson"
)

// LocationKind tags which variant a Location holds
type LocationKind uint8

const (
	// LocationNone is the zero value; encoding it fails
	LocationNone LocationKind = iota
	// LocationPoint is a point given as lat, lng and an optional z
	LocationPoint
	// LocationBounds is a bounding box given as four coordinates
	LocationBounds
	// LocationString is a string payload, sent as a geohash unless SetOptions.Type is TypeString
	LocationString
	// LocationGeoJSON is a GeoJSON object sent as its JSON serialization
	LocationGeoJSON
)

// Location is the value part of a SET command
type Location struct {
	kind   LocationKind
	coords []float64
	str    string
}

// Kind returns the variant of the location
func (l Location) Kind() LocationKind {
	return l.kind
}

// Coords returns a copy of the coordinates of a point or bounds location
func (l Location) Coords() []float64 {
	return append([]float64(nil), l.coords...)
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// Coordinates classifies a coordinate list: one to three values are a point,
// exactly four values are a bounding box. Any other length yields a location
// that fails with ErrInvalidArgument when it is encoded.
func Coordinates(coords ...float64) Location {
	c := append([]float64(nil), coords...)
	if len(c) == 4 {
		return Location{kind: LocationBounds, coords: c}
	}
	return Location{kind: LocationPoint, coords: c}
}

// PointLocation creates a point location
func PointLocation(lat, lng float64) Location {
	return Location{kind: LocationPoint, coords: []float64{lat, lng}}
}

// PointZLocation creates a point location with a z coordinate
func PointZLocation(lat, lng, z float64) Location {
	return Location{kind: LocationPoint, coords: []float64{lat, lng, z}}
}

// BoundsLocation creates a bounding box location
func BoundsLocation(minLat, minLng, maxLat, maxLng float64) Location {
	return Location{kind: LocationBounds, coords: []float64{minLat, minLng, maxLat, maxLng}}
}

// StringLocation creates a string location. Whether it is sent as a geohash
// or as a string object depends on SetOptions.Type.
func StringLocation(s string) Location {
	return Location{kind: LocationString, str: s}
}

// HashLocation creates a string location holding the geohash of the given point
func HashLocation(lat, lng float64, precision uint) Location {
	return StringLocation(geohash.EncodeWithPrecision(lat, lng, precision))
}

// ObjectLocation creates a GeoJSON location from a parsed object
func ObjectLocation(obj geojson.Object) Location {
	return Location{kind: LocationGeoJSON, str: obj.JSON()}
}

// GeoJSONLocation creates a GeoJSON location from any value that marshals to
// a GeoJSON object (a map, a struct or a json.RawMessage).
func GeoJSONLocation(v any) (Location, error) {
	switch obj := v.(type) {
	case geojson.Object:
		return ObjectLocation(obj), nil
	case string:
		if !json.Valid([]byte(obj)) {
			return Location{}, NewInvalidArgumentError("geojson is not valid json")
		}
		return Location{kind: LocationGeoJSON, str: obj}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Location{}, NewInvalidArgumentError("failed to marshal geojson: %v", err)
	}
	return Location{kind: LocationGeoJSON, str: string(data)}, nil
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// appendArgs appends the wire tokens of the location to args
func (l Location) appendArgs(args []any, typ ObjectType) ([]any, error) {
	switch l.kind {
	case LocationPoint:
		if len(l.coords) < 1 || len(l.coords) > 3 {
			return nil, NewInvalidArgumentError("a point needs 1 to 3 coordinates, got %d", len(l.coords))
		}
		args = append(args, "POINT")
		for _, c := range l.coords {
			args = append(args, c)
		}
		return args, nil
	case LocationBounds:
		if len(l.coords) != 4 {
			return nil, NewInvalidArgumentError("bounds need 4 coordinates, got %d", len(l.coords))
		}
		args = append(args, "BOUNDS")
		for _, c := range l.coords {
			args = append(args, c)
		}
		return args, nil
	case LocationString:
		if typ == TypeString {
			// TODO: quotes inside the value are not escaped, the server cannot tell them apart from the wrapping ones
			return append(args, "STRING", `"`+l.str+`"`), nil
		}
		return append(args, "HASH", l.str), nil
	case LocationGeoJSON:
		return append(args, l.str), nil
	default:
		return nil, NewInvalidArgumentError("missing location")
	}
}

// --------------------------------------------------------------------------
// Decoded location values
// --------------------------------------------------------------------------

// Point is a decoded point as returned by GET ... POINT
type Point struct {
	Lat float64  `json:"lat" yaml:"lat"`
	Lng float64  `json:"lon" yaml:"lon"`
	Z   *float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// Bounds is a decoded bounding box as returned by GET ... BOUNDS
type Bounds struct {
	SW Point `json:"sw" yaml:"sw"`
	NE Point `json:"ne" yaml:"ne"`
}

// Geohash is a geohash string as returned by GET ... HASH
type Geohash string

// Center returns the center of the geohash cell
func (h Geohash) Center() Point {
	lat, lng := geohash.DecodeCenter(string(h))
	return Point{Lat: lat, Lng: lng}
}

// Box returns the cell covered by the geohash
func (h Geohash) Box() Bounds {
	box := geohash.BoundingBox(string(h))
	return Bounds{
		SW: Point{Lat: box.MinLat, Lng: box.MinLng},
		NE: Point{Lat: box.MaxLat, Lng: box.MaxLng},
	}
}
