package shape

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	gojson "github.com/goccy/go-json"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

var (
	// ErrInvalidShape is returned for malformed or out-of-range geometry.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrUnsupportedType is returned for geometry types that cannot be indexed.
	ErrUnsupportedType = errors.New("unsupported geometry type")
)

// Parse decodes a GeoJSON geometry object or a bare [lon, lat] array.
func Parse(data []byte) (*Shape, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidShape)
	}
	if data[0] == '[' {
		return ParseCoordinates(data, true)
	}
	return ParseRegion(data)
}

// ParseRegion decodes a GeoJSON geometry object.
func ParseRegion(data []byte) (*Shape, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	return FromGeom(g)
}

// ParsePoint decodes a point argument. Non-point geometries are reduced to
// their centroid.
func ParsePoint(data []byte) (*Shape, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.kind == KindPoint {
		return s, nil
	}
	return FromPoint(s.centroid), nil
}

// ParseCoordinates decodes a two-element numeric array. With lonLat set the
// order is [lon, lat], otherwise [lat, lon].
func ParseCoordinates(data []byte, lonLat bool) (*Shape, error) {
	var coords []float64
	if err := gojson.Unmarshal(data, &coords); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("%w: expected 2 coordinates, got %d", ErrInvalidShape, len(coords))
	}
	lat, lng := coords[0], coords[1]
	if lonLat {
		lat, lng = lng, lat
	}
	return NewPoint(lat, lng)
}

// NewPoint returns a validated point shape at the given degrees.
func NewPoint(lat, lng float64) (*Shape, error) {
	ll, err := latLng(lat, lng)
	if err != nil {
		return nil, err
	}
	return FromPoint(s2.PointFromLatLng(ll)), nil
}

// FromGeom converts a decoded geometry.
func FromGeom(g geom.T) (*Shape, error) {
	if _, ok := g.(*geom.GeometryCollection); ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, g)
	}
	if g == nil || len(g.FlatCoords()) == 0 {
		return nil, fmt.Errorf("%w: empty geometry", ErrInvalidShape)
	}
	switch repr := g.(type) {
	case *geom.Point:
		p, err := coordPoint(repr.Coords())
		if err != nil {
			return nil, err
		}
		return FromPoint(p), nil
	case *geom.MultiPoint:
		pts := make([]s2.Point, 0, repr.NumPoints())
		for i := 0; i < repr.NumPoints(); i++ {
			pt := repr.Point(i)
			if len(pt.FlatCoords()) == 0 {
				continue
			}
			p, err := coordPoint(pt.Coords())
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
		return fromPoints(pts)
	case *geom.LineString:
		line, err := polyline(repr.Coords())
		if err != nil {
			return nil, err
		}
		return fromLines(KindPolyline, []*s2.Polyline{line}), nil
	case *geom.MultiLineString:
		lines := make([]*s2.Polyline, 0, repr.NumLineStrings())
		for i := 0; i < repr.NumLineStrings(); i++ {
			line, err := polyline(repr.LineString(i).Coords())
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: empty multi line string", ErrInvalidShape)
		}
		return fromLines(KindMultiPolyline, lines), nil
	case *geom.Polygon:
		rings := repr.Coords()
		if r, ok := rectFromRings(rings); ok {
			return fromRect(r), nil
		}
		return fromPolygons(KindPolygon, [][][]geom.Coord{rings})
	case *geom.MultiPolygon:
		return fromPolygons(KindMultiPolygon, repr.Coords())
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, g)
	}
}

func latLng(lat, lng float64) (s2.LatLng, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return s2.LatLng{}, fmt.Errorf("%w: non-finite coordinate", ErrInvalidShape)
	}
	if lat < -90 || lat > 90 {
		return s2.LatLng{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidShape, lat)
	}
	if lng < -180 || lng > 180 {
		return s2.LatLng{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidShape, lng)
	}
	return s2.LatLngFromDegrees(lat, lng), nil
}

func coordPoint(c geom.Coord) (s2.Point, error) {
	if len(c) < 2 {
		return s2.Point{}, fmt.Errorf("%w: coordinate needs 2 values", ErrInvalidShape)
	}
	ll, err := latLng(c.Y(), c.X())
	if err != nil {
		return s2.Point{}, err
	}
	return s2.PointFromLatLng(ll), nil
}

func polyline(coords []geom.Coord) (*s2.Polyline, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("%w: line string needs at least 2 points", ErrInvalidShape)
	}
	lls := make([]s2.LatLng, len(coords))
	for i, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("%w: coordinate needs 2 values", ErrInvalidShape)
		}
		ll, err := latLng(c.Y(), c.X())
		if err != nil {
			return nil, err
		}
		lls[i] = ll
	}
	return s2.PolylineFromLatLngs(lls), nil
}

// loop builds a normalized loop from a closed GeoJSON ring.
func loop(ring []geom.Coord) (*s2.Loop, error) {
	if n := len(ring); n > 1 && ring[0].Equal(geom.XY, ring[n-1]) {
		ring = ring[:n-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: ring needs at least 3 distinct points", ErrInvalidShape)
	}
	pts := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		p, err := coordPoint(c)
		if err != nil {
			return nil, err
		}
		if len(pts) > 0 && pts[len(pts)-1].ApproxEqual(p) {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: degenerate ring", ErrInvalidShape)
	}
	l := s2.LoopFromPoints(pts)
	l.Normalize()
	return l, nil
}

func fromPoints(pts []s2.Point) (*Shape, error) {
	if len(pts) == 0 {
		return nil, fmt.Errorf("%w: empty multi point", ErrInvalidShape)
	}
	regions := make([]s2.Region, len(pts))
	for i, p := range pts {
		regions[i] = p
	}
	return &Shape{
		kind:     KindMultiPoint,
		points:   pts,
		centroid: pointsCentroid(pts),
		region:   newUnion(regions),
	}, nil
}

func fromLines(kind Kind, lines []*s2.Polyline) *Shape {
	s := &Shape{kind: kind, lines: lines, centroid: linesCentroid(lines)}
	if len(lines) == 1 {
		s.region = lines[0]
		return s
	}
	regions := make([]s2.Region, len(lines))
	for i, l := range lines {
		regions[i] = l
	}
	s.region = newUnion(regions)
	return s
}

func fromRect(r s2.Rect) *Shape {
	return &Shape{
		kind:     KindRect,
		rect:     r,
		centroid: s2.PointFromLatLng(r.Center()),
		region:   r,
	}
}

// fromPolygons merges the loops of all polygons into one S2 polygon. The first
// ring of each polygon is its shell, the remaining rings are holes.
func fromPolygons(kind Kind, polygons [][][]geom.Coord) (*Shape, error) {
	var (
		loops  []*s2.Loop
		moment r3.Vector
		all    []s2.Point
	)
	for _, rings := range polygons {
		if len(rings) == 0 {
			return nil, fmt.Errorf("%w: polygon without rings", ErrInvalidShape)
		}
		for i, ring := range rings {
			l, err := loop(ring)
			if err != nil {
				return nil, err
			}
			m := loopMoment(l)
			if i == 0 {
				moment = moment.Add(m)
			} else {
				moment = moment.Sub(m)
			}
			all = append(all, l.Vertices()...)
			loops = append(loops, l)
		}
	}
	if len(loops) == 0 {
		return nil, fmt.Errorf("%w: empty multi polygon", ErrInvalidShape)
	}
	poly := s2.PolygonFromLoops(loops)
	return &Shape{
		kind:     kind,
		polygon:  poly,
		centroid: normalized(moment, all),
		region:   poly,
	}, nil
}

// rectFromRings detects an axis-aligned latitude/longitude box given as a
// single closed ring of five positions.
func rectFromRings(rings [][]geom.Coord) (s2.Rect, bool) {
	if len(rings) != 1 || len(rings[0]) != 5 {
		return s2.Rect{}, false
	}
	ring := rings[0]
	if !ring[0].Equal(geom.XY, ring[4]) {
		return s2.Rect{}, false
	}
	lats := map[float64]struct{}{}
	lngs := map[float64]struct{}{}
	for _, c := range ring[:4] {
		if len(c) < 2 {
			return s2.Rect{}, false
		}
		lats[c.Y()] = struct{}{}
		lngs[c.X()] = struct{}{}
	}
	if len(lats) != 2 || len(lngs) != 2 {
		return s2.Rect{}, false
	}
	// consecutive corners must share exactly one axis
	for i := 0; i < 4; i++ {
		a, b := ring[i], ring[i+1]
		if (a.X() == b.X()) == (a.Y() == b.Y()) {
			return s2.Rect{}, false
		}
	}
	var lo, hi s2.LatLng
	first := true
	for _, c := range ring[:4] {
		ll, err := latLng(c.Y(), c.X())
		if err != nil {
			return s2.Rect{}, false
		}
		if first {
			lo, hi = ll, ll
			first = false
			continue
		}
		lo.Lat, hi.Lat = min(lo.Lat, ll.Lat), max(hi.Lat, ll.Lat)
		lo.Lng, hi.Lng = min(lo.Lng, ll.Lng), max(hi.Lng, ll.Lng)
	}
	if hi.Lng-lo.Lng >= s2.LatLngFromDegrees(0, 180).Lng {
		return s2.Rect{}, false
	}
	return s2.RectFromLatLng(lo).AddPoint(hi), true
}
