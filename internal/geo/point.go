// Package geo holds the spatial point type stored in the reports table.
// The database column is a PostGIS geometry(Point,4326); writes go through
// ST_SetSRID(ST_MakePoint(lng, lat), 4326) and reads come back as hex EWKB.
package geo

import (
	"context"
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

const srid = 4326

// Point is a WGS84 latitude/longitude pair. The zero value is not a valid
// stored point; use NewPoint so range checks run before anything is written.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewPoint(lat, lng float64) (Point, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return Point{}, fmt.Errorf("%w: non-finite value", ErrInvalidCoordinate)
	}
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidCoordinate, lat)
	}
	if lng < -180 || lng > 180 {
		return Point{}, fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidCoordinate, lng)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

func (Point) GormDataType() string {
	return "geometry(Point,4326)"
}

func (p Point) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL:  "ST_SetSRID(ST_MakePoint(?, ?), 4326)",
		Vars: []interface{}{p.Lng, p.Lat},
	}
}

// Scan decodes the value PostGIS hands back for a geometry column. The
// driver delivers hex-encoded EWKB; WKT is accepted too since raw SQL
// paths may select ST_AsText(location).
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		*p = Point{}
		return nil
	}
	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("geo: cannot scan %T into Point", value)
	}
	if c := Decode(s); c != nil {
		*p = Point{Lat: c.Lat, Lng: c.Lng}
		return nil
	}
	return fmt.Errorf("geo: cannot decode point value %q", s)
}

// Value exists to satisfy driver.Valuer for code paths outside gorm; the
// text form keeps the wire order longitude-then-latitude.
func (p Point) Value() (driver.Value, error) {
	return fmt.Sprintf("SRID=%d;POINT(%v %v)", srid, p.Lng, p.Lat), nil
}

// Coordinate is the application-level view of a stored point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Decode turns any of the representations a point may arrive in (the Point
// type itself, a structured coordinate, hex EWKB, or WKT "POINT(lng lat)")
// into a Coordinate. It returns nil when the value matches none of them.
func Decode(value interface{}) *Coordinate {
	switch v := value.(type) {
	case nil:
		return nil
	case Point:
		return &Coordinate{Lat: v.Lat, Lng: v.Lng}
	case *Point:
		if v == nil {
			return nil
		}
		return &Coordinate{Lat: v.Lat, Lng: v.Lng}
	case Coordinate:
		return &Coordinate{Lat: v.Lat, Lng: v.Lng}
	case *Coordinate:
		if v == nil {
			return nil
		}
		return &Coordinate{Lat: v.Lat, Lng: v.Lng}
	case map[string]interface{}:
		return decodeMap(v)
	case []byte:
		return decodeString(string(v))
	case string:
		return decodeString(v)
	default:
		return nil
	}
}

func decodeMap(m map[string]interface{}) *Coordinate {
	lat, ok := numericField(m, "lat", "latitude")
	if !ok {
		return nil
	}
	lng, ok := numericField(m, "lng", "lon", "longitude")
	if !ok {
		return nil
	}
	return &Coordinate{Lat: lat, Lng: lng}
}

func numericField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		switch n := raw.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func decodeString(s string) *Coordinate {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if c := parseWKT(s); c != nil {
		return c
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return parseEWKB(raw)
}

// parseWKT handles "POINT(lng lat)" with an optional SRID=n; prefix.
func parseWKT(s string) *Coordinate {
	upper := strings.ToUpper(s)
	if idx := strings.Index(upper, ";"); idx >= 0 && strings.HasPrefix(upper, "SRID=") {
		s = s[idx+1:]
		upper = upper[idx+1:]
	}
	if !strings.HasPrefix(upper, "POINT") {
		return nil
	}
	open := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if open < 0 || end < open {
		return nil
	}
	fields := strings.Fields(s[open+1 : end])
	if len(fields) != 2 {
		return nil
	}
	lng, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil
	}
	return &Coordinate{Lat: lat, Lng: lng}
}

const (
	ewkbSRIDFlag  uint32 = 0x20000000
	ewkbZFlag     uint32 = 0x80000000
	ewkbMFlag     uint32 = 0x40000000
	wkbPoint      uint32 = 1
	ewkbHeaderLen        = 1 + 4
)

// parseEWKB decodes a (possibly extended) WKB point in either byte order.
// Z/M ordinates beyond the first two are ignored.
func parseEWKB(b []byte) *Coordinate {
	if len(b) < ewkbHeaderLen {
		return nil
	}
	var order binary.ByteOrder
	switch b[0] {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return nil
	}
	gtype := order.Uint32(b[1:5])
	rest := b[5:]
	if gtype&ewkbSRIDFlag != 0 {
		if len(rest) < 4 {
			return nil
		}
		rest = rest[4:]
	}
	if gtype&^(ewkbSRIDFlag|ewkbZFlag|ewkbMFlag) != wkbPoint {
		return nil
	}
	if len(rest) < 16 {
		return nil
	}
	lng := math.Float64frombits(order.Uint64(rest[0:8]))
	lat := math.Float64frombits(order.Uint64(rest[8:16]))
	return &Coordinate{Lat: lat, Lng: lng}
}
