package search

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/hupe1980/geosearch/s2terms"
	"github.com/hupe1980/geosearch/segment"
	"github.com/hupe1980/geosearch/shape"
)

// BoundType selects how a range bound compares.
type BoundType uint8

const (
	// Unbounded ignores the bound value.
	Unbounded BoundType = iota
	// Inclusive accepts distances equal to the bound.
	Inclusive
	// Exclusive rejects distances equal to the bound.
	Exclusive
)

func (b BoundType) String() string {
	switch b {
	case Unbounded:
		return "unbounded"
	case Inclusive:
		return "inclusive"
	case Exclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("BoundType(%d)", uint8(b))
	}
}

// Range is a distance interval in meters. Each bound is applied
// independently.
type Range struct {
	Min      float64
	Max      float64
	MinBound BoundType
	MaxBound BoundType
}

// Contains reports whether d lies in the range.
func (r Range) Contains(d float64) bool {
	switch r.MinBound {
	case Inclusive:
		if d < r.Min {
			return false
		}
	case Exclusive:
		if d <= r.Min {
			return false
		}
	}
	switch r.MaxBound {
	case Inclusive:
		return d <= r.Max
	case Exclusive:
		return d < r.Max
	}
	return true
}

// IsEmpty reports whether no distance can satisfy the range.
func (r Range) IsEmpty() bool {
	if r.MaxBound == Unbounded {
		return false
	}
	if r.Max < 0 || (r.Max == 0 && r.MaxBound == Exclusive) {
		return true
	}
	if r.MinBound == Unbounded {
		return false
	}
	if r.Min > r.Max {
		return true
	}
	return r.Min == r.Max && (r.MinBound == Exclusive || r.MaxBound == Exclusive)
}

func (r Range) validate() error {
	for _, b := range []struct {
		name  string
		v     float64
		bound BoundType
	}{{"min", r.Min, r.MinBound}, {"max", r.Max, r.MaxBound}} {
		if b.bound > Exclusive {
			return fmt.Errorf("%w: %s bound %v", ErrInvalidFilter, b.name, b.bound)
		}
		if b.bound != Unbounded && (math.IsNaN(b.v) || math.IsInf(b.v, 0)) {
			return fmt.Errorf("%w: %s distance %v is not finite", ErrInvalidFilter, b.name, b.v)
		}
	}
	return nil
}

// InRange returns a distance filter for [min, max]. A zero min leaves the
// lower bound open.
func InRange(field string, origin s2.Point, min, max float64, includeMin, includeMax bool) *GeoDistanceFilter {
	r := Range{Min: min, Max: max, MaxBound: boundOf(includeMax)}
	if min != 0 {
		r.MinBound = boundOf(includeMin)
	}
	return NewGeoDistanceFilter(field, origin, r)
}

func boundOf(inclusive bool) BoundType {
	if inclusive {
		return Inclusive
	}
	return Exclusive
}

// DistanceRange returns the range satisfying "distance op d" for op one of
// ==, <, <=, >, >=.
func DistanceRange(op string, d float64) (Range, error) {
	switch op {
	case "==":
		return Range{Min: d, Max: d, MinBound: Inclusive, MaxBound: Inclusive}, nil
	case "<":
		return Range{Max: d, MaxBound: Exclusive}, nil
	case "<=":
		return Range{Max: d, MaxBound: Inclusive}, nil
	case ">":
		return Range{Min: d, MinBound: Exclusive}, nil
	case ">=":
		return Range{Min: d, MinBound: Inclusive}, nil
	default:
		return Range{}, fmt.Errorf("%w: unsupported distance operator %q", ErrInvalidFilter, op)
	}
}

// OriginFromShape returns the point distances are measured from: the point of
// a point shape, the centroid otherwise.
func OriginFromShape(s *shape.Shape) s2.Point {
	if p, ok := s.Point(); ok {
		return p
	}
	return s.Centroid()
}

// GeoDistanceFilterOptions is the mutable part of a GeoDistanceFilter.
type GeoDistanceFilterOptions struct {
	Origin  s2.Point
	Range   Range
	Options s2terms.Options
}

// GeoDistanceFilter matches documents whose centroid lies within a distance
// range of an origin. Every candidate is verified with the exact distance.
type GeoDistanceFilter struct {
	field  string
	opts   GeoDistanceFilterOptions
	boost  float32
	scorer DistanceScorer
}

// NewGeoDistanceFilter returns a filter with default term options.
func NewGeoDistanceFilter(field string, origin s2.Point, r Range) *GeoDistanceFilter {
	return &GeoDistanceFilter{
		field: field,
		opts: GeoDistanceFilterOptions{
			Origin:  origin,
			Range:   r,
			Options: s2terms.DefaultOptions(),
		},
		boost: 1,
	}
}

// Field returns the filtered field.
func (f *GeoDistanceFilter) Field() string { return f.field }

// SetField sets the filtered field.
func (f *GeoDistanceFilter) SetField(field string) { f.field = field }

// Options returns the options for modification.
func (f *GeoDistanceFilter) Options() *GeoDistanceFilterOptions { return &f.opts }

// Boost returns the score factor of every match.
func (f *GeoDistanceFilter) Boost() float32 { return f.boost }

// SetBoost sets the score factor of every match.
func (f *GeoDistanceFilter) SetBoost(b float32) { f.boost = b }

// SetScorer scores matches by their exact distance to the origin.
func (f *GeoDistanceFilter) SetScorer(s DistanceScorer) { f.scorer = s }

// Equal reports whether both filters select the same documents.
func (f *GeoDistanceFilter) Equal(other *GeoDistanceFilter) bool {
	if f == other {
		return true
	}
	return other != nil && f.field == other.field && f.opts == other.opts
}

// Hash returns a hash consistent with Equal for query plan caches.
func (f *GeoDistanceFilter) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(f.field)
	var buf [8]byte
	o, r := f.opts.Origin, f.opts.Range
	for _, v := range []float64{o.X, o.Y, o.Z, r.Min, r.Max} {
		if v == 0 {
			v = 0 // -0 compares equal to 0
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	_, _ = d.Write([]byte{byte(r.MinBound), byte(r.MaxBound)})
	writeOptions(d, f.opts.Options)
	return d.Sum64()
}

func (f *GeoDistanceFilter) validate() error {
	o := f.opts.Origin
	switch {
	case f.field == "":
		return fmt.Errorf("%w: empty field", ErrInvalidFilter)
	case !o.IsUnit():
		return fmt.Errorf("%w: origin is not a unit vector", ErrInvalidFilter)
	}
	if err := f.opts.Range.validate(); err != nil {
		return err
	}
	if err := f.opts.Options.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return nil
}

// Prepare selects the candidates of the range in r. An unbounded max selects
// every document of the field; a contradictory range selects nothing.
func (f *GeoDistanceFilter) Prepare(r segment.Reader) (*PreparedFilter, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	rng, origin := f.opts.Range, f.opts.Origin
	if rng.IsEmpty() {
		return newPrepared(f.field, f.boost, nil), nil
	}

	var postings []*segment.Postings
	switch {
	case rng.MaxBound == Unbounded:
		if docs := r.FieldDocs(f.field); docs != nil && !docs.IsEmpty() {
			postings = []*segment.Postings{docs}
		}
	case rng.Max == 0:
		ix := s2terms.NewIndexer(f.opts.Options)
		postings = lookup(r, f.field, ix.QueryTermsForPoint(nil, origin))
	default:
		ix := s2terms.NewIndexer(f.opts.Options)
		angle := s1.Angle(rng.Max / shape.EarthRadiusMeters)
		postings = lookup(r, f.field, ix.QueryTermsForRegion(nil, s2.CapFromCenterAngle(origin, angle)))
	}

	p := newPrepared(f.field, f.boost, postings)
	p.scorer = f.scorer
	p.match = func(c *shape.Shape) (float32, bool) {
		d := shape.Distance(origin, c.Centroid())
		if !rng.Contains(d) {
			return 0, false
		}
		if p.scorer == nil {
			return p.boost, true
		}
		return p.boost * p.scorer.Score(d), true
	}
	return p, nil
}
