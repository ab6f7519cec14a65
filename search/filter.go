package search

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/geo/s2"

	"github.com/hupe1980/geosearch/s2terms"
	"github.com/hupe1980/geosearch/segment"
	"github.com/hupe1980/geosearch/shape"
)

// ErrInvalidFilter is returned by Prepare for filters that cannot run.
var ErrInvalidFilter = errors.New("invalid geo filter")

// FilterType is the spatial predicate of a GeoFilter.
type FilterType uint8

const (
	// Intersects matches documents sharing a term with the query shape.
	Intersects FilterType = iota
	// Contains matches documents lying inside the query shape.
	Contains
	// IsContained matches documents that contain the query shape.
	IsContained
	// Nearby matches documents sharing a term with the query shape, like
	// Intersects. It marks proximity queries for callers that rank by
	// distance.
	Nearby
)

func (t FilterType) String() string {
	switch t {
	case Intersects:
		return "intersects"
	case Contains:
		return "contains"
	case IsContained:
		return "is_contained"
	case Nearby:
		return "nearby"
	default:
		return fmt.Sprintf("FilterType(%d)", uint8(t))
	}
}

// ParseFilterType parses a predicate name as returned by FilterType.String.
func ParseFilterType(s string) (FilterType, error) {
	for t := Intersects; t <= Nearby; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidFilter, s)
}

// GeoFilterOptions is the mutable part of a GeoFilter.
type GeoFilterOptions struct {
	Shape   *shape.Shape
	Type    FilterType
	Options s2terms.Options
}

// GeoFilter matches documents by a spatial predicate against a query shape.
type GeoFilter struct {
	field  string
	opts   GeoFilterOptions
	boost  float32
	scorer DistanceScorer
}

// NewGeoFilter returns a filter with default term options. Use
// segment.Segment.PrepareQuery to get the options of the field.
func NewGeoFilter(field string, typ FilterType, s *shape.Shape) *GeoFilter {
	return &GeoFilter{
		field: field,
		opts: GeoFilterOptions{
			Shape:   s,
			Type:    typ,
			Options: s2terms.DefaultOptions(),
		},
		boost: 1,
	}
}

// Field returns the filtered field.
func (f *GeoFilter) Field() string { return f.field }

// SetField sets the filtered field.
func (f *GeoFilter) SetField(field string) { f.field = field }

// Options returns the options for modification.
func (f *GeoFilter) Options() *GeoFilterOptions { return &f.opts }

// Boost returns the score of every match without a scorer.
func (f *GeoFilter) Boost() float32 { return f.boost }

// SetBoost sets the score of every match without a scorer.
func (f *GeoFilter) SetBoost(b float32) { f.boost = b }

// SetScorer scores matches by the distance between the centroids of the query
// shape and the document. A nil scorer restores constant scoring.
func (f *GeoFilter) SetScorer(s DistanceScorer) { f.scorer = s }

// covering returns the canonical cell covering of the query shape.
func (f *GeoFilter) covering() s2.CellUnion {
	s := f.opts.Shape
	if s == nil {
		return nil
	}
	if p, ok := s.Point(); ok {
		return s2.CellUnion{s2.CellFromPoint(p).ID()}
	}
	return s2terms.NewIndexer(f.opts.Options).Covering(s.Region())
}

// Equal reports whether both filters select the same documents. Shapes are
// compared by their cell covering.
func (f *GeoFilter) Equal(other *GeoFilter) bool {
	if f == other {
		return true
	}
	if other == nil || f.field != other.field || f.opts.Type != other.opts.Type ||
		f.opts.Options != other.opts.Options {
		return false
	}
	return slices.Equal(f.covering(), other.covering())
}

// Hash returns a hash consistent with Equal for query plan caches.
func (f *GeoFilter) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	buf[0] = byte(f.opts.Type)
	_, _ = d.Write(buf[:1])
	_, _ = d.WriteString(f.field)
	writeOptions(d, f.opts.Options)
	for _, id := range f.covering() {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

func writeOptions(d *xxhash.Digest, o s2terms.Options) {
	var buf [4 * 4]byte
	for i, v := range []int{o.MinLevel, o.MaxLevel, o.LevelMod, o.MaxCells} {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	_, _ = d.Write(buf[:])
	_, _ = d.Write([]byte{o.Marker, boolByte(o.PointsOnly), boolByte(o.OptimizeForSpace)})
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (f *GeoFilter) validate() error {
	switch {
	case f.field == "":
		return fmt.Errorf("%w: empty field", ErrInvalidFilter)
	case f.opts.Shape == nil || f.opts.Shape.Kind() == shape.KindEmpty:
		return fmt.Errorf("%w: no shape", ErrInvalidFilter)
	case f.opts.Type > Nearby:
		return fmt.Errorf("%w: unknown type %v", ErrInvalidFilter, f.opts.Type)
	}
	if err := f.opts.Options.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return nil
}

// Prepare computes the query terms and looks up their postings in r.
func (f *GeoFilter) Prepare(r segment.Reader) (*PreparedFilter, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	s := f.opts.Shape
	ix := s2terms.NewIndexer(f.opts.Options)
	var terms []string
	if p, ok := s.Point(); ok {
		terms = ix.QueryTermsForPoint(nil, p)
	} else {
		terms = ix.QueryTermsForRegion(nil, s.Region())
	}

	p := newPrepared(f.field, f.boost, lookup(r, f.field, terms))
	p.scorer = f.scorer
	switch f.opts.Type {
	case Contains:
		p.match = p.scored(s, func(c *shape.Shape) bool { return s.Contains(c) })
	case IsContained:
		p.match = p.scored(s, func(c *shape.Shape) bool { return c.Contains(s) })
	default:
		if f.scorer != nil {
			p.match = p.scored(s, nil)
		}
	}
	return p, nil
}

// lookup returns the non-empty postings of the distinct terms.
func lookup(r segment.Reader, field string, terms []string) []*segment.Postings {
	slices.Sort(terms)
	terms = slices.Compact(terms)
	postings := make([]*segment.Postings, 0, len(terms))
	for _, t := range terms {
		if p := r.Postings(field, t); p != nil && !p.IsEmpty() {
			postings = append(postings, p)
		}
	}
	return postings
}

// PreparedFilter is a filter bound to the terms of one reader. It is
// immutable and safe for concurrent use.
type PreparedFilter struct {
	field    string
	boost    float32
	postings []*segment.Postings
	cost     int64
	match    matchFunc
	scorer   DistanceScorer
}

func newPrepared(field string, boost float32, postings []*segment.Postings) *PreparedFilter {
	p := &PreparedFilter{field: field, boost: boost, postings: postings}
	for _, pl := range postings {
		p.cost += int64(pl.Cardinality())
	}
	return p
}

// scored wraps accept into a matchFunc that scores by centroid distance when
// a scorer is set. A nil accept matches every candidate.
func (p *PreparedFilter) scored(origin *shape.Shape, accept func(*shape.Shape) bool) matchFunc {
	return func(c *shape.Shape) (float32, bool) {
		if accept != nil && !accept(c) {
			return 0, false
		}
		if p.scorer == nil {
			return p.boost, true
		}
		return p.boost * p.scorer.Score(origin.DistanceFromCentroid(c)), true
	}
}

// Field returns the filtered field.
func (p *PreparedFilter) Field() string { return p.field }

// Cost returns the sum of the candidate posting sizes.
func (p *PreparedFilter) Cost() int64 { return p.cost }

// Execute returns the matches in r, which must be the reader the filter was
// prepared against. r is only used until the iterator is exhausted.
func (p *PreparedFilter) Execute(r segment.Reader, opts ...ExecOption) DocIterator {
	if len(p.postings) == 0 {
		return Empty()
	}
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}
	candidates := newDisjunction(p.postings, p.boost)
	if p.match == nil {
		return candidates
	}
	return newVerifyIterator(candidates, r, p.field, p.match, o)
}
