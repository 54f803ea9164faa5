// Package geo computes the approximate search rectangles used to pre-filter
// accident records around a point.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// EarthRadiusKM is the mean Earth radius used for the box approximation.
const EarthRadiusKM = 6371.0

// SRID is the spatial reference of every geometry built here (WGS 84).
const SRID = 4326

// ErrInvalidRadius is returned for a non-positive search radius.
var ErrInvalidRadius = eris.New("geo: radius must be greater than zero")

// BoundingBox is an axis-aligned rectangle in degrees.
type BoundingBox struct {
	MinLat float64 `json:"lat_min"`
	MinLon float64 `json:"lon_min"`
	MaxLat float64 `json:"lat_max"`
	MaxLon float64 `json:"lon_max"`
}

// BoundingBoxAround returns the rectangle spanning radiusKM around the point.
//
// The east-west span uses the radius of the parallel at lat, so it widens
// towards the poles and diverges at them. Boxes crossing the antimeridian
// are not wrapped. Callers must stay in ordinary mid-latitude regions.
func BoundingBoxAround(lat, lon, radiusKM float64) (BoundingBox, error) {
	if !(radiusKM > 0) {
		return BoundingBox{}, eris.Wrapf(ErrInvalidRadius, "got %v", radiusKM)
	}

	latR := lat * math.Pi / 180
	lonR := lon * math.Pi / 180

	// Radius of the parallel at the given latitude.
	parallelRadius := EarthRadiusKM * math.Cos(latR)

	dLat := radiusKM / EarthRadiusKM
	dLon := radiusKM / parallelRadius

	return BoundingBox{
		MinLat: degrees(latR - dLat),
		MinLon: degrees(lonR - dLon),
		MaxLat: degrees(latR + dLat),
		MaxLon: degrees(lonR + dLon),
	}, nil
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Contains reports whether the point lies inside the box. Edges count as
// inside, the same as a point/polygon intersection test.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Polygon returns the box as a closed rectangular ring (x = lon, y = lat).
func (b BoundingBox) Polygon() *geom.Polygon {
	flat := []float64{
		b.MinLon, b.MinLat,
		b.MinLon, b.MaxLat,
		b.MaxLon, b.MaxLat,
		b.MaxLon, b.MinLat,
		b.MinLon, b.MinLat,
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)
}

// WKT renders the box polygon as well-known text.
func (b BoundingBox) WKT() (string, error) {
	s, err := wkt.Marshal(b.Polygon())
	if err != nil {
		return "", eris.Wrap(err, "geo: encode WKT")
	}
	return s, nil
}

// EncodeEWKB serialises a polygon as little-endian EWKB for PostGIS.
func EncodeEWKB(p *geom.Polygon) ([]byte, error) {
	if p == nil {
		return nil, eris.New("geo: nil polygon")
	}
	data, err := ewkb.Marshal(p, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB")
	}
	return data, nil
}

// PolygonContains reports whether the point falls inside the polygon's
// bounds. Search areas are rectangles, so the bounds are the polygon.
func PolygonContains(p *geom.Polygon, lat, lon float64) bool {
	if p == nil || p.Empty() {
		return false
	}
	return p.Bounds().OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}
