package search

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/segment"
	"github.com/hupe1980/geosearch/shape"
)

func prepareDistance(t *testing.T, seg *segment.Segment, f *GeoDistanceFilter) *PreparedFilter {
	t.Helper()
	require.NoError(t, seg.PrepareQuery(f.Field(), &f.Options().Options))
	p, err := f.Prepare(seg)
	require.NoError(t, err)
	return p
}

func TestGeoDistanceFilter_Radius(t *testing.T) {
	seg := moscowSegment(t)
	for _, field := range []string{"location", "geometry"} {
		t.Run(field, func(t *testing.T) {
			f := NewGeoDistanceFilter(field, origin, Range{Max: 300, MaxBound: Inclusive})
			p := prepareDistance(t, seg, f)
			assert.Equal(t, []uint32{0, 1}, docs(Collect(p.Execute(seg), 0)))
			assert.GreaterOrEqual(t, p.Cost(), int64(2))
		})
	}
}

func TestGeoDistanceFilter_Scorer(t *testing.T) {
	seg := moscowSegment(t)
	f := NewGeoDistanceFilter("location", origin, Range{Max: 300, MaxBound: Inclusive})
	f.SetScorer(RawDistance{})

	hits := Collect(prepareDistance(t, seg, f).Execute(seg), 0)
	require.Len(t, hits, 2)
	assert.InDelta(t, 17.04, hits[0].Score, 0.1)
	assert.InDelta(t, 170.26, hits[1].Score, 0.1)

	f.SetScorer(InverseDistance{Scale: 100})
	f.SetBoost(10)
	hits = Collect(prepareDistance(t, seg, f).Execute(seg), 0)
	require.Len(t, hits, 2)
	assert.InDelta(t, 10/(1+0.1704), hits[0].Score, 0.01)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestGeoDistanceFilter_MinOnly(t *testing.T) {
	seg := moscowSegment(t)
	f := NewGeoDistanceFilter("location", origin, Range{Min: 1000, MinBound: Inclusive})
	p := prepareDistance(t, seg, f)

	assert.Equal(t, int64(28), p.Cost())
	got := docs(Collect(p.Execute(seg), 0))
	require.Len(t, got, 26)
	assert.Equal(t, uint32(2), got[0])
	assert.Equal(t, uint32(27), got[25])

	unbounded := NewGeoDistanceFilter("location", origin, Range{})
	assert.Len(t, Collect(prepareDistance(t, seg, unbounded).Execute(seg), 0), 28)
}

func TestGeoDistanceFilter_RegionCandidates(t *testing.T) {
	seg := newSegment(t, []segment.FieldConfig{{Name: "geometry", Kind: analysis.KindGeoJSON}},
		`{"geometry": {"type": "Point", "coordinates": [10, 0]}}`,
		`{"geometry": {"type": "MultiPoint", "coordinates": [[9.9, 0], [10.1, 0]]}}`,
		`{"geometry": {"type": "LineString", "coordinates": [[9.9995, 0], [10.0005, 0]]}}`,
	)
	at := s2.PointFromLatLng(s2.LatLngFromDegrees(0, 10))
	spread := mustShape(t, `{"type": "MultiPoint", "coordinates": [[9.9, 0], [10.1, 0]]}`)
	require.Less(t, shape.Distance(at, spread.Centroid()), 1.0)

	// Candidates come from the geometry's own terms: the multipoint's
	// centroid is within the radius, but none of its points are.
	f := NewGeoDistanceFilter("geometry", at, Range{Max: 100, MaxBound: Inclusive})
	assert.Equal(t, []uint32{0, 2}, docs(Collect(prepareDistance(t, seg, f).Execute(seg), 0)))

	// An unbounded max scans the whole field and finds it.
	f = NewGeoDistanceFilter("geometry", at, Range{Max: 100, MaxBound: Unbounded})
	assert.Equal(t, []uint32{0, 1, 2}, docs(Collect(prepareDistance(t, seg, f).Execute(seg), 0)))
}

func TestGeoDistanceFilter_ExactPoint(t *testing.T) {
	ll := s2.LatLngFromPoint(origin)
	seg := newSegment(t, []segment.FieldConfig{
		{Name: "location", Kind: analysis.KindGeoPoint},
	},
		`{"location": [37.608, 55.709]}`,
		`{"location": [`+ftoa(ll.Lng.Degrees())+`, `+ftoa(ll.Lat.Degrees())+`]}`,
		`{"location": [37.6078, 55.7089]}`,
	)

	at := s2.PointFromLatLng(s2.LatLngFromDegrees(ll.Lat.Degrees(), ll.Lng.Degrees()))
	f := NewGeoDistanceFilter("location", at, Range{MinBound: Inclusive, MaxBound: Inclusive})
	assert.Equal(t, []uint32{1}, docs(Collect(prepareDistance(t, seg, f).Execute(seg), 0)))
}

func TestGeoDistanceFilter_EmptyRanges(t *testing.T) {
	seg := moscowSegment(t)
	for _, r := range []Range{
		{Min: 500, Max: 100, MinBound: Inclusive, MaxBound: Inclusive},
		{Min: 100, Max: 100, MinBound: Exclusive, MaxBound: Inclusive},
		{Min: 100, Max: 100, MinBound: Inclusive, MaxBound: Exclusive},
		{Max: 0, MaxBound: Exclusive},
		{Max: -1, MaxBound: Inclusive},
	} {
		p := prepareDistance(t, seg, NewGeoDistanceFilter("location", origin, r))
		assert.Equal(t, int64(0), p.Cost(), "%+v", r)
		assert.False(t, p.Execute(seg).Next(), "%+v", r)
	}
}

func TestGeoDistanceFilter_PrepareErrors(t *testing.T) {
	seg := moscowSegment(t)
	tests := []struct {
		name   string
		filter *GeoDistanceFilter
	}{
		{"no field", NewGeoDistanceFilter("", origin, Range{})},
		{"zero origin", NewGeoDistanceFilter("location", s2.Point{}, Range{})},
		{"scaled origin", NewGeoDistanceFilter("location", s2.Point{Vector: r3.Vector{X: 2}}, Range{})},
		{"nan max", NewGeoDistanceFilter("location", origin, Range{Max: math.NaN(), MaxBound: Inclusive})},
		{"inf min", NewGeoDistanceFilter("location", origin, Range{Min: math.Inf(1), MinBound: Exclusive})},
		{"bad bound", NewGeoDistanceFilter("location", origin, Range{MaxBound: BoundType(7)})},
		{"bad options", func() *GeoDistanceFilter {
			f := NewGeoDistanceFilter("location", origin, Range{})
			f.Options().Options.MaxLevel = 31
			return f
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.filter.Prepare(seg)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}

	// Unbounded values are ignored.
	f := NewGeoDistanceFilter("location", origin, Range{Max: math.NaN()})
	_, err := f.Prepare(seg)
	assert.NoError(t, err)
}

func TestRange(t *testing.T) {
	tests := []struct {
		r     Range
		d     float64
		want  bool
		empty bool
	}{
		{Range{}, 1e9, true, false},
		{Range{Min: 10, MinBound: Inclusive}, 10, true, false},
		{Range{Min: 10, MinBound: Exclusive}, 10, false, false},
		{Range{Max: 10, MaxBound: Inclusive}, 10, true, false},
		{Range{Max: 10, MaxBound: Exclusive}, 10, false, false},
		{Range{Min: 5, Max: 10, MinBound: Inclusive, MaxBound: Inclusive}, 4, false, false},
		{Range{Min: 5, Max: 5, MinBound: Inclusive, MaxBound: Inclusive}, 5, true, false},
		{Range{Min: 6, Max: 5, MinBound: Inclusive, MaxBound: Inclusive}, 5, false, true},
		{Range{Min: 6, Max: 5, MaxBound: Inclusive}, 5, true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.r.Contains(tt.d), "%+v contains %v", tt.r, tt.d)
		assert.Equal(t, tt.empty, tt.r.IsEmpty(), "%+v", tt.r)
	}
}

func TestInRange(t *testing.T) {
	f := InRange("location", origin, 0, 300, true, false)
	assert.Equal(t, Range{Max: 300, MaxBound: Exclusive}, f.Options().Range)
	assert.Equal(t, origin, f.Options().Origin)

	f = InRange("location", origin, 100, 300, false, true)
	assert.Equal(t, Range{Min: 100, Max: 300, MinBound: Exclusive, MaxBound: Inclusive}, f.Options().Range)

	seg := moscowSegment(t)
	got := docs(Collect(prepareDistance(t, seg, InRange("location", origin, 100, 300, true, true)).Execute(seg), 0))
	assert.Equal(t, []uint32{1}, got)
}

func TestDistanceRange(t *testing.T) {
	tests := []struct {
		op   string
		want Range
	}{
		{"==", Range{Min: 7, Max: 7, MinBound: Inclusive, MaxBound: Inclusive}},
		{"<", Range{Max: 7, MaxBound: Exclusive}},
		{"<=", Range{Max: 7, MaxBound: Inclusive}},
		{">", Range{Min: 7, MinBound: Exclusive}},
		{">=", Range{Min: 7, MinBound: Inclusive}},
	}
	for _, tt := range tests {
		got, err := DistanceRange(tt.op, 7)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.op)
	}
	_, err := DistanceRange("!=", 7)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestOriginFromShape(t *testing.T) {
	p := shape.FromPoint(origin)
	assert.Equal(t, origin, OriginFromShape(p))

	s := mustShape(t, bbox)
	assert.Equal(t, s.Centroid(), OriginFromShape(s))
}

func TestGeoDistanceFilter_EqualHash(t *testing.T) {
	a := NewGeoDistanceFilter("location", origin, Range{Max: 300, MaxBound: Inclusive})
	b := NewGeoDistanceFilter("location", origin, Range{Max: 300, MaxBound: Inclusive})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	b.SetBoost(2)
	b.SetScorer(RawDistance{})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	negZero := NewGeoDistanceFilter("location", origin, Range{Min: math.Copysign(0, -1), Max: 300, MaxBound: Inclusive})
	assert.True(t, a.Equal(negZero))
	assert.Equal(t, a.Hash(), negZero.Hash())

	tests := []struct {
		name   string
		modify func(f *GeoDistanceFilter)
	}{
		{"bound", func(f *GeoDistanceFilter) { f.Options().Range.MaxBound = Exclusive }},
		{"max", func(f *GeoDistanceFilter) { f.Options().Range.Max = 301 }},
		{"min", func(f *GeoDistanceFilter) {
			f.Options().Range.Min = 10
			f.Options().Range.MinBound = Inclusive
		}},
		{"field", func(f *GeoDistanceFilter) { f.SetField("geometry") }},
		{"origin", func(f *GeoDistanceFilter) {
			f.Options().Origin = s2.PointFromLatLng(s2.LatLngFromDegrees(55, 37))
		}},
		{"options", func(f *GeoDistanceFilter) { f.Options().Options.PointsOnly = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewGeoDistanceFilter("location", origin, Range{Max: 300, MaxBound: Inclusive})
			tt.modify(c)
			assert.False(t, a.Equal(c))
			assert.NotEqual(t, a.Hash(), c.Hash())
		})
	}

	assert.False(t, a.Equal(nil))
	assert.Equal(t, "inclusive", Inclusive.String())
}
