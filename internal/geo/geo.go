// Package geo converts airline headquarters between the GeoJSON used on the
// wire and the WKB stored in the database.
package geo

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

var ErrNotPoint = errors.New("headquarters must be a GeoJSON Point")

// PointToWKB parses a GeoJSON Point and returns it as little-endian WKB.
// An empty or null input clears the location and returns nil.
func PointToWKB(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return nil, ErrNotPoint
	}
	if err := validLonLat(p.X(), p.Y()); err != nil {
		return nil, err
	}
	return wkb.Marshal(p, binary.LittleEndian)
}

// WKBToGeoJSON converts stored WKB into GeoJSON; nil input yields nil.
func WKBToGeoJSON(data []byte) (json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode wkb: %w", err)
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewPoint builds WKB for a longitude/latitude pair.
func NewPoint(lon, lat float64) ([]byte, error) {
	if err := validLonLat(lon, lat); err != nil {
		return nil, err
	}
	p := geom.NewPointFlat(geom.XY, []float64{lon, lat})
	return wkb.Marshal(p, binary.LittleEndian)
}

func validLonLat(lon, lat float64) error {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("coordinates out of range: lon=%v lat=%v", lon, lat)
	}
	return nil
}
