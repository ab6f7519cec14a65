package shape

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean earth radius used for distances.
const EarthRadiusMeters = 6371000.0

// onEdgeTolerance is the angular distance under which a point is considered
// to lie on a polyline (roughly a millimetre).
const onEdgeTolerance = s1.Angle(1e-10)

// Kind identifies the geometry variant held by a Shape.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindPoint
	KindPolyline
	KindMultiPoint
	KindMultiPolyline
	KindPolygon
	KindMultiPolygon
	KindRect
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindPolyline:
		return "LineString"
	case KindMultiPoint:
		return "MultiPoint"
	case KindMultiPolyline:
		return "MultiLineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	case KindRect:
		return "Rect"
	default:
		return "Empty"
	}
}

// Shape is a parsed geometry.
type Shape struct {
	kind     Kind
	points   []s2.Point
	lines    []*s2.Polyline
	polygon  *s2.Polygon
	rect     s2.Rect
	centroid s2.Point
	region   s2.Region
}

// FromPoint returns a point shape.
func FromPoint(p s2.Point) *Shape {
	return &Shape{kind: KindPoint, points: []s2.Point{p}, centroid: p}
}

// FromLatLng returns a point shape at the given coordinates in degrees.
func FromLatLng(lat, lng float64) *Shape {
	return FromPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng)))
}

// Kind returns the geometry variant.
func (s *Shape) Kind() Kind { return s.kind }

// IsPoint reports whether the shape is a single point.
func (s *Shape) IsPoint() bool { return s.kind == KindPoint }

// Point returns the point of a point shape.
func (s *Shape) Point() (s2.Point, bool) {
	if s.kind != KindPoint {
		return s2.Point{}, false
	}
	return s.points[0], true
}

// Centroid returns the representative point of the shape.
func (s *Shape) Centroid() s2.Point { return s.centroid }

// Region returns the region to cover. It is nil for a point.
func (s *Shape) Region() s2.Region { return s.region }

// DistanceFromCentroid returns the great-circle distance in meters between
// the centroids of s and other.
func (s *Shape) DistanceFromCentroid(other *Shape) float64 {
	return Distance(s.centroid, other.centroid)
}

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b s2.Point) float64 {
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// Contains reports whether other lies entirely inside s.
func (s *Shape) Contains(other *Shape) bool {
	if other == nil || other.kind == KindEmpty {
		return false
	}
	switch s.kind {
	case KindPoint, KindMultiPoint:
		return other.allVertices(func(p s2.Point) bool {
			for _, q := range s.points {
				if q.ApproxEqual(p) {
					return true
				}
			}
			return false
		}) && !other.hasArea()
	case KindPolyline, KindMultiPolyline:
		return other.allVertices(s.onLines) && !other.hasArea()
	case KindRect:
		switch other.kind {
		case KindRect:
			return s.rect.Contains(other.rect)
		case KindPoint, KindMultiPoint:
			return other.allVertices(s.rect.ContainsPoint)
		default:
			// RectBound includes the poleward bulge of geodesic edges.
			tol := onEdgeTolerance.Radians()
			bound := s2.Rect{Lat: s.rect.Lat.Expanded(tol), Lng: s.rect.Lng.Expanded(tol)}
			return bound.Contains(other.region.RectBound())
		}
	case KindPolygon, KindMultiPolygon:
		return s.polygonContains(other)
	default:
		return false
	}
}

func (s *Shape) polygonContains(other *Shape) bool {
	switch other.kind {
	case KindPoint, KindMultiPoint:
		return other.allVertices(s.polygon.ContainsPoint)
	case KindPolyline, KindMultiPolyline:
		if !other.allVertices(s.polygon.ContainsPoint) {
			return false
		}
		for _, line := range other.lines {
			if s.crossesBoundary(*line) {
				return false
			}
		}
		return true
	case KindPolygon, KindMultiPolygon:
		return s.polygon.Contains(other.polygon)
	case KindRect:
		return s.polygon.Contains(rectPolygon(other.rect))
	default:
		return false
	}
}

func (s *Shape) crossesBoundary(line s2.Polyline) bool {
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		for _, loop := range s.polygon.Loops() {
			n := loop.NumVertices()
			for j := 0; j < n; j++ {
				if s2.CrossingSign(a, b, loop.Vertex(j), loop.Vertex((j+1)%n)) == s2.Cross {
					return true
				}
			}
		}
	}
	return false
}

func (s *Shape) onLines(p s2.Point) bool {
	for _, line := range s.lines {
		pl := *line
		if len(pl) == 1 && pl[0].ApproxEqual(p) {
			return true
		}
		for i := 0; i+1 < len(pl); i++ {
			if s2.DistanceFromSegment(p, pl[i], pl[i+1]) <= onEdgeTolerance {
				return true
			}
		}
	}
	return false
}

func (s *Shape) hasArea() bool {
	return s.kind == KindPolygon || s.kind == KindMultiPolygon || s.kind == KindRect
}

// allVertices reports whether fn holds for every vertex of s.
func (s *Shape) allVertices(fn func(s2.Point) bool) bool {
	switch s.kind {
	case KindPoint, KindMultiPoint:
		for _, p := range s.points {
			if !fn(p) {
				return false
			}
		}
	case KindPolyline, KindMultiPolyline:
		for _, line := range s.lines {
			for _, p := range *line {
				if !fn(p) {
					return false
				}
			}
		}
	case KindPolygon, KindMultiPolygon:
		for _, loop := range s.polygon.Loops() {
			for _, p := range loop.Vertices() {
				if !fn(p) {
					return false
				}
			}
		}
	case KindRect:
		for i := 0; i < 4; i++ {
			if !fn(s2.PointFromLatLng(s.rect.Vertex(i))) {
				return false
			}
		}
	default:
		return false
	}
	return true
}

// rectMaxChord is the widest longitude step, in radians, of a densified
// latitude edge. A geodesic chord of that width strays at most about 1e-7
// radians (under a metre) from the parallel it replaces.
const rectMaxChord = 1.26e-3

// rectPolygon approximates r by a loop whose latitude edges are split into
// short geodesic chords, since a rect's edges follow parallels and a
// polygon's follow great circles.
func rectPolygon(r s2.Rect) *s2.Polygon {
	width := r.Lng.Length()
	steps := min(max(int(math.Ceil(width/rectMaxChord)), 1), 1<<12)

	pts := make([]s2.Point, 0, 2*steps+2)
	parallel := func(lat s1.Angle, from, step float64) {
		if math.Abs(lat.Radians()) >= math.Pi/2 {
			pts = append(pts, s2.PointFromLatLng(s2.LatLng{Lat: lat, Lng: s1.Angle(from)}))
			return
		}
		for i := 0; i <= steps; i++ {
			ll := s2.LatLng{Lat: lat, Lng: s1.Angle(from + float64(i)*step)}.Normalized()
			pts = append(pts, s2.PointFromLatLng(ll))
		}
	}
	step := width / float64(steps)
	parallel(s1.Angle(r.Lat.Lo), r.Lng.Lo, step)
	parallel(s1.Angle(r.Lat.Hi), r.Lng.Lo+width, -step)

	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return s2.PolygonFromLoops([]*s2.Loop{loop})
}

func normalized(v r3.Vector, fallback []s2.Point) s2.Point {
	if v.Norm() > 1e-15 {
		return s2.Point{Vector: v.Normalize()}
	}
	var sum r3.Vector
	for _, p := range fallback {
		sum = sum.Add(p.Vector)
	}
	if sum.Norm() == 0 && len(fallback) > 0 {
		return fallback[0]
	}
	return s2.Point{Vector: sum.Normalize()}
}

// pointsCentroid is the normalized mean of the points.
func pointsCentroid(pts []s2.Point) s2.Point {
	var sum r3.Vector
	for _, p := range pts {
		sum = sum.Add(p.Vector)
	}
	return normalized(sum, pts)
}

// linesCentroid weights each edge midpoint by the edge length.
func linesCentroid(lines []*s2.Polyline) s2.Point {
	var (
		sum r3.Vector
		all []s2.Point
	)
	for _, line := range lines {
		pl := *line
		all = append(all, pl...)
		for i := 0; i+1 < len(pl); i++ {
			w := pl[i].Distance(pl[i+1]).Radians()
			sum = sum.Add(pl[i].Vector.Add(pl[i+1].Vector).Mul(w))
		}
	}
	return normalized(sum, all)
}

// loopMoment returns the area-weighted centroid sum of a CCW loop.
func loopMoment(loop *s2.Loop) r3.Vector {
	var sum r3.Vector
	n := loop.NumVertices()
	if n < 3 {
		return sum
	}
	v0 := loop.Vertex(0).Vector
	for i := 1; i+1 < n; i++ {
		vi, vj := loop.Vertex(i).Vector, loop.Vertex(i+1).Vector
		w := v0.Dot(vi.Cross(vj))
		sum = sum.Add(v0.Add(vi).Add(vj).Mul(w))
	}
	return sum
}
