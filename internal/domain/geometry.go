package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GeometryType tags a Geometry variant.
type GeometryType string

const (
	GeometryPoint   GeometryType = "Point"
	GeometryPolygon GeometryType = "Polygon"
)

// Ring is a closed ordered sequence of [lon, lat] positions. A valid ring has
// at least four positions with the first and last equal.
type Ring [][]float64

// Geometry is a tagged Point/Polygon variant. Exactly one of Point or Rings
// is set, matching Type. Geometries are built fresh per alert and never
// mutated after construction.
type Geometry struct {
	Type  GeometryType
	Point []float64 // [lon, lat], set when Type == GeometryPoint
	Rings []Ring    // set when Type == GeometryPolygon
}

// Circle is a parsed CAP circle: a center position plus a radius in
// kilometres. The radius is carried through for completeness but the output
// geometry degrades to a Point at the center.
type Circle struct {
	Center   []float64 // [lon, lat]
	RadiusKm float64
}

type geometryJSON struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// MarshalJSON renders the geometry in GeoJSON shape, with the coordinates
// nesting depth depending on the variant.
func (g Geometry) MarshalJSON() ([]byte, error) {
	var coords any
	switch g.Type {
	case GeometryPoint:
		coords = g.Point
	case GeometryPolygon:
		coords = g.Rings
	default:
		return nil, fmt.Errorf("marshal geometry: unknown type %q", g.Type)
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		return nil, err
	}
	return json.Marshal(geometryJSON{Type: g.Type, Coordinates: raw})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw geometryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Type = raw.Type
	g.Point = nil
	g.Rings = nil
	switch raw.Type {
	case GeometryPoint:
		return json.Unmarshal(raw.Coordinates, &g.Point)
	case GeometryPolygon:
		return json.Unmarshal(raw.Coordinates, &g.Rings)
	default:
		return fmt.Errorf("unmarshal geometry: unknown type %q", raw.Type)
	}
}

// maxReportedPairs bounds how many offending pairs a polygon error names.
const maxReportedPairs = 3

// ParsePolygonString parses one CAP polygon string ("lat,lon lat,lon ...")
// into a one-element ring list. Invalid pairs are accumulated and reported,
// never silently dropped: any invalid pair fails the whole string with an
// error naming up to three offenders. Fewer than three valid points is also
// an error. The ring is emitted in [lon, lat] order and auto-closed.
func ParsePolygonString(polygon string) ([]Ring, error) {
	var ring Ring
	var invalid []string

	for _, pair := range strings.Fields(polygon) {
		lat, lon, ok := parseCoordinatePair(pair)
		if !ok {
			invalid = append(invalid, pair)
			continue
		}
		ring = append(ring, []float64{lon, lat})
	}

	if len(invalid) > 0 {
		shown := invalid
		suffix := ""
		if len(shown) > maxReportedPairs {
			shown = shown[:maxReportedPairs]
			suffix = ", …"
		}
		return nil, fmt.Errorf("polygon has %d invalid pair(s): %s%s",
			len(invalid), strings.Join(shown, ", "), suffix)
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("polygon has %d valid point(s), need at least 3", len(ring))
	}

	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		ring = append(ring, []float64{first[0], first[1]})
	}

	return []Ring{ring}, nil
}

// ParseCircleString parses one CAP circle string ("lat,lon radius").
// Returns nil, not an error, for empty or malformed input, a non-positive
// radius, or out-of-range coordinates.
func ParseCircleString(circle string) *Circle {
	fields := strings.Fields(circle)
	if len(fields) != 2 {
		return nil
	}

	lat, lon, ok := parseCoordinatePair(fields[0])
	if !ok {
		return nil
	}
	radius, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || radius <= 0 {
		return nil
	}

	return &Circle{Center: []float64{lon, lat}, RadiusKm: radius}
}

// parseCoordinatePair splits "lat,lon" and validates numeric form and range.
func parseCoordinatePair(pair string) (lat, lon float64, ok bool) {
	parts := strings.Split(pair, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// degenerateArea is the signed-area threshold below which a ring is treated
// as collinear and the centroid falls back to the vertex mean.
const degenerateArea = 1e-10

// Centroid computes the area centroid of a closed ring via the shoelace
// formula. CAP polygons can be highly non-convex, so the naive vertex average
// is not good enough; it is used only as a fallback for degenerate
// (zero-area) rings.
func Centroid(ring Ring) []float64 {
	var area, cx, cy float64
	for i := 0; i < len(ring)-1; i++ {
		x0, y0 := ring[i][0], ring[i][1]
		x1, y1 := ring[i+1][0], ring[i+1][1]
		a := x0*y1 - x1*y0
		area += a
		cx += (x0 + x1) * a
		cy += (y0 + y1) * a
	}
	area *= 0.5

	if area > -degenerateArea && area < degenerateArea {
		return vertexMean(ring)
	}
	return []float64{cx / (6 * area), cy / (6 * area)}
}

func vertexMean(ring Ring) []float64 {
	if len(ring) == 0 {
		return []float64{0, 0}
	}
	var sx, sy float64
	for _, p := range ring {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(ring))
	return []float64{sx / n, sy / n}
}
