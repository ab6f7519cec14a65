package search

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/segment"
	"github.com/hupe1980/geosearch/shape"
)

var origin = s2.PointFromLatLng(s2.LatLngFromDegrees(55.70892, 37.607768))

// moscowPoints returns 28 points as [lat, lng]. The first two lie within
// 300 m of origin, every other one more than 2 km away.
func moscowPoints() [][2]float64 {
	pts := [][2]float64{
		{55.709, 37.608},
		{55.7101, 37.6095},
	}
	for i := 0; i < 26; i++ {
		pts = append(pts, [2]float64{55.60 + float64(i/6)*0.05, 37.40 + float64(i%6)*0.08})
	}
	return pts
}

// bbox encloses the first two moscow points.
const bbox = `{"type": "Polygon", "coordinates": [[
	[37.6075, 55.7085], [37.6100, 55.7085], [37.6100, 55.7105], [37.6075, 55.7105], [37.6075, 55.7085]
]]}`

func newSegment(t *testing.T, fields []segment.FieldConfig, docs ...string) *segment.Segment {
	t.Helper()
	w, err := segment.NewWriter(fields)
	require.NoError(t, err)
	for _, doc := range docs {
		_, err := w.Add(segment.Document(doc))
		require.NoError(t, err)
	}
	return w.Flush()
}

// moscowSegment indexes each point twice: as a geopoint in "location" and as
// GeoJSON in "geometry".
func moscowSegment(t *testing.T) *segment.Segment {
	t.Helper()
	var docs []string
	for _, p := range moscowPoints() {
		lng, lat := ftoa(p[1]), ftoa(p[0])
		docs = append(docs, fmt.Sprintf(
			`{"location": [%s, %s], "geometry": {"type": "Point", "coordinates": [%s, %s]}}`,
			lng, lat, lng, lat))
	}
	return newSegment(t, []segment.FieldConfig{
		{Name: "location", Kind: analysis.KindGeoPoint},
		{Name: "geometry", Kind: analysis.KindGeoJSON},
	}, docs...)
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func mustShape(t *testing.T, raw string) *shape.Shape {
	t.Helper()
	s, err := shape.Parse([]byte(raw))
	require.NoError(t, err)
	return s
}

func docs(hits []Hit) []uint32 {
	out := make([]uint32, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Doc)
	}
	return out
}

type preparer interface {
	Prepare(segment.Reader) (*PreparedFilter, error)
}

func run(t *testing.T, seg *segment.Segment, f preparer) []uint32 {
	t.Helper()
	p, err := f.Prepare(seg)
	require.NoError(t, err)
	return docs(Collect(p.Execute(seg), 0))
}

// memReader is a segment.Reader over hand-built postings and stored values.
type memReader struct {
	postings map[string]*segment.Postings
	stored   map[uint32][]byte
}

func (r *memReader) Postings(_, term string) *segment.Postings { return r.postings[term] }

func (r *memReader) FieldDocs(string) *segment.Postings {
	all := segment.NewPostings()
	for _, p := range r.postings {
		all.Or(p)
	}
	return all
}

func (r *memReader) Stored(_ string, doc uint32) ([]byte, error) {
	raw, ok := r.stored[doc]
	if !ok {
		return nil, segment.ErrNotStored
	}
	return raw, nil
}

func (r *memReader) DocCount() uint32 { return uint32(len(r.stored)) }
