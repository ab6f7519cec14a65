package geosearch_test

import (
	"context"
	"fmt"
	"log"

	"github.com/golang/geo/s2"

	"github.com/hupe1980/geosearch"
	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/search"
	"github.com/hupe1980/geosearch/shape"
)

func newExampleIndex() *geosearch.Index {
	idx, err := geosearch.New(
		geosearch.WithField("location", analysis.KindGeoPoint, `{"latitude": ["lat"], "longitude": ["lon"]}`),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for _, doc := range []string{
		`{"name": "cafe", "location": {"lat": 55.709, "lon": 37.608}}`,
		`{"name": "museum", "location": {"lat": 55.7101, "lon": 37.6095}}`,
		`{"name": "station", "location": {"lat": 55.6, "lon": 37.5}}`,
	} {
		if _, err := idx.Add(ctx, []byte(doc)); err != nil {
			log.Fatal(err)
		}
	}
	return idx
}

// Example_boundingBox finds documents inside a polygon.
func Example_boundingBox() {
	ctx := context.Background()
	snap := newExampleIndex().Commit(ctx)

	box, err := shape.Parse([]byte(`{"type": "Polygon", "coordinates": [[
		[37.6075, 55.7085], [37.6100, 55.7085], [37.6100, 55.7105], [37.6075, 55.7105], [37.6075, 55.7085]
	]]}`))
	if err != nil {
		log.Fatal(err)
	}

	f, err := snap.GeoFilter("location", search.Intersects, box)
	if err != nil {
		log.Fatal(err)
	}

	hits, err := snap.Search(f).Execute(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, h := range hits {
		fmt.Println(h.Doc)
	}
	// Output:
	// 0
	// 1
}

// Example_nearest ranks documents by distance from an origin.
func Example_nearest() {
	ctx := context.Background()
	snap := newExampleIndex().Commit(ctx)

	origin := s2.PointFromLatLng(s2.LatLngFromDegrees(55.70892, 37.607768))
	f, err := snap.DistanceFilter("location", origin, search.Range{Max: 1000, MaxBound: search.Inclusive})
	if err != nil {
		log.Fatal(err)
	}
	f.SetScorer(search.RawDistance{})

	hits, err := snap.Search(f).TopK(5, search.Ascending).Execute(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, h := range hits {
		fmt.Printf("doc %d: %.0f m\n", h.Doc, h.Score)
	}
	// Output:
	// doc 0: 17 m
	// doc 1: 170 m
}
