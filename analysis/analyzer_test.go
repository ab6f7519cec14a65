package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geosearch/codec"
	"github.com/hupe1980/geosearch/s2terms"
)

func drain(t *testing.T, a *Analyzer) []string {
	t.Helper()
	var terms []string
	for a.Next() {
		assert.Equal(t, uint32(1), a.Increment())
		terms = append(terms, string(a.Value()))
	}
	return terms
}

func mustMake(t *testing.T, kind Kind, config string) *Analyzer {
	t.Helper()
	a, err := Make(kind, []byte(config))
	require.NoError(t, err)
	return a
}

const polygon = `{"type": "Polygon", "coordinates": [[[37.60, 55.70], [37.62, 55.70], [37.61, 55.72], [37.60, 55.70]]]}`

func TestAnalyzer_ShapeMode(t *testing.T) {
	a := mustMake(t, KindGeoJSON, `{}`)
	assert.Equal(t, ModeShape, a.Mode())
	assert.False(t, a.PointsOnly())

	require.True(t, a.Reset([]byte(polygon)))
	terms := drain(t, a)
	require.NotEmpty(t, terms)
	hasCovering := false
	for _, term := range terms {
		if strings.HasPrefix(term, "$") {
			hasCovering = true
		}
	}
	assert.True(t, hasCovering)
	assert.JSONEq(t, polygon, string(a.Stored()))

	// the sequence is consumed once
	assert.False(t, a.Next())

	// a point falls back to point terms
	require.True(t, a.Reset([]byte(`{"type": "Point", "coordinates": [37.61, 55.71]}`)))
	terms = drain(t, a)
	assert.Len(t, terms, s2terms.DefaultMaxLevel-s2terms.DefaultMinLevel+1)
	for _, term := range terms {
		assert.False(t, strings.HasPrefix(term, "$"))
	}
}

func TestAnalyzer_CentroidMode(t *testing.T) {
	a := mustMake(t, KindGeoJSON, `{"mode": "centroid"}`)
	assert.True(t, a.PointsOnly())

	require.True(t, a.Reset([]byte(polygon)))
	assert.Len(t, drain(t, a), s2terms.DefaultMaxLevel-s2terms.DefaultMinLevel+1)
}

func TestAnalyzer_PointMode(t *testing.T) {
	a := mustMake(t, KindGeoJSON, `{"mode": "point"}`)
	assert.False(t, a.Reset([]byte(polygon)))
	assert.Error(t, a.Err())
	assert.False(t, a.Next())
	assert.Nil(t, a.Stored())

	require.True(t, a.Reset([]byte(`[37.61, 55.71]`)))
	assert.NoError(t, a.Err())
	assert.NotEmpty(t, drain(t, a))
}

func TestAnalyzer_InvalidValues(t *testing.T) {
	shapeAnalyzer := mustMake(t, KindGeoJSON, `{}`)
	pointAnalyzer := mustMake(t, KindGeoPoint, `{}`)
	for _, in := range []string{
		``, `{}`, `[]`, `null`, `true`, `0`, `"text"`,
		`[1]`, `["a", "b"]`, `[10, 100]`,
		`{"type": "Point", "coordinates": []}`,
		`{"type": "Point", "coordinates": [10, 95]}`,
	} {
		assert.False(t, shapeAnalyzer.Reset([]byte(in)), in)
		assert.False(t, pointAnalyzer.Reset([]byte(in)), in)
		assert.False(t, pointAnalyzer.Next())
	}
}

func TestAnalyzer_GeoPoint(t *testing.T) {
	a := mustMake(t, KindGeoPoint, `{}`)
	assert.True(t, a.PointsOnly())

	require.True(t, a.Reset([]byte(`[37.607768, 55.70892]`)))
	raw := drain(t, a)
	assert.Equal(t, "[37.607768,55.70892]", string(a.Stored()))

	// GeoJSON is not accepted by a raw geopoint analyzer
	assert.False(t, a.Reset([]byte(`{"type": "Point", "coordinates": [37.607768, 55.70892]}`)))

	b := mustMake(t, KindGeoPoint, `{"latitude": ["loc", "lat"], "longitude": ["loc", "lon"]}`)
	require.True(t, b.Reset([]byte(`{"loc": {"lat": 55.70892, "lon": 37.607768}, "name": "x"}`)))
	assert.Equal(t, raw, drain(t, b))
	assert.Equal(t, "[37.607768,55.70892]", string(b.Stored()))

	assert.False(t, b.Reset([]byte(`{"loc": {"lat": "55.7", "lon": 37.6}}`)))
	assert.False(t, b.Reset([]byte(`{"loc": {"lat": 55.7}}`)))
	assert.False(t, b.Reset([]byte(`[37.6, 55.7]`)))
	assert.False(t, b.Reset([]byte(`{"loc": {"lat": 95, "lon": 37.6}}`)))

	for _, in := range []string{
		`{"loc": {"lat": 55.7, "lon": 37.6}`,
		`{"loc": {"lat": 55.7, "lon": 37.6}} trailing`,
		`{"loc": {"lat": 55.7 "lon": 37.6}}`,
	} {
		assert.False(t, b.Reset([]byte(in)), in)
		assert.ErrorIs(t, b.Err(), ErrInvalidValue, in)
		assert.Nil(t, b.Stored(), in)
	}

	flat := mustMake(t, KindGeoPoint, `{"latitude": ["lat"], "longitude": ["lon"]}`)
	assert.False(t, flat.Reset([]byte(`{"lat": 55.7, "lon": 37.6`)))
	assert.True(t, flat.Reset([]byte(`{"lat": 55.7, "lon": 37.6}`)))
}

func TestAnalyzer_PointModeMatchesGeoPoint(t *testing.T) {
	geo := mustMake(t, KindGeoJSON, `{"mode": "point"}`)
	pt := mustMake(t, KindGeoPoint, `{}`)

	require.True(t, geo.Reset([]byte(`{"type": "Point", "coordinates": [37.607768, 55.70892]}`)))
	require.True(t, pt.Reset([]byte(`[37.607768, 55.70892]`)))
	assert.Equal(t, drain(t, pt), drain(t, geo))

	var a, b s2terms.Options
	geo.PrepareQuery(&a)
	pt.PrepareQuery(&b)
	assert.Equal(t, a, b)
	assert.True(t, a.PointsOnly)
}

func TestAnalyzer_PrepareQuery(t *testing.T) {
	a := mustMake(t, KindGeoJSON, `{"options": {"maxCells": 8, "minLevel": 2, "maxLevel": 12}}`)
	var o s2terms.Options
	a.PrepareQuery(&o)
	assert.Equal(t, IndexOptions{MaxCells: 8, MinLevel: 2, MaxLevel: 12}, a.Options())
	assert.Equal(t, 8, o.MaxCells)
	assert.Equal(t, 2, o.MinLevel)
	assert.Equal(t, 12, o.MaxLevel)
	assert.False(t, o.PointsOnly)
}

func TestAnalyzer_Clone(t *testing.T) {
	a := mustMake(t, KindGeoPoint, `{"latitude": ["lat"], "longitude": ["lon"]}`)
	c := a.Clone()
	assert.Equal(t, string(a.Config()), string(c.Config()))

	require.True(t, a.Reset([]byte(`{"lat": 1, "lon": 2}`)))
	require.True(t, c.Reset([]byte(`{"lat": 1, "lon": 2}`)))
	assert.Equal(t, drain(t, a), drain(t, c))
}

func TestNewAnalyzers(t *testing.T) {
	a, err := NewShapeAnalyzer(ModeCentroid, DefaultIndexOptions())
	require.NoError(t, err)
	assert.Equal(t, KindGeoJSON, a.Kind())
	assert.Equal(t, `{"mode":"centroid","options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`, string(a.Config()))

	_, err = NewShapeAnalyzer(Mode(9), DefaultIndexOptions())
	assert.ErrorIs(t, err, ErrUnknownMode)
	_, err = NewShapeAnalyzer(ModeShape, IndexOptions{})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	p, err := NewPointAnalyzer(DefaultIndexOptions(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, KindGeoPoint, p.Kind())
	_, err = NewPointAnalyzer(DefaultIndexOptions(), []string{"lat"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// countingCodec records how often the analyzer reaches for its codec.
type countingCodec struct {
	codec.JSON
	calls int
}

func (c *countingCodec) Marshal(v any) ([]byte, error) {
	c.calls++
	return c.JSON.Marshal(v)
}

func (c *countingCodec) Unmarshal(data []byte, v any) error {
	c.calls++
	return c.JSON.Unmarshal(data, v)
}

func TestAnalyzer_WithCodec(t *testing.T) {
	c := &countingCodec{}
	a, err := Make(KindGeoPoint, []byte(`{"options": {"maxCells": 8}}`), WithCodec(c))
	require.NoError(t, err)
	assert.Equal(t, 1, c.calls)

	require.True(t, a.Reset([]byte(`[37.607768, 55.70892]`)))
	assert.Equal(t, 3, c.calls)
	assert.Equal(t, "[37.607768,55.70892]", string(a.Stored()))

	clone := a.Clone()
	require.True(t, clone.Reset([]byte(`[37.6, 55.7]`)))
	assert.Equal(t, 5, c.calls)

	def, err := Make(KindGeoPoint, nil, WithCodec(nil))
	require.NoError(t, err)
	require.True(t, def.Reset([]byte(`[37.6, 55.7]`)))
	assert.Equal(t, 5, c.calls)
}
