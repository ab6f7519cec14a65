// Package geosearch provides an embedded spatial index for JSON documents.
//
// Documents are indexed by S2 cell terms derived from a GeoJSON geometry or
// a latitude/longitude pair. Filters match candidates by term and confirm
// them against the stored geometry, so results are exact.
//
// # Quick Start
//
//	ctx := context.Background()
//	idx, _ := geosearch.New(
//	    geosearch.WithField("location", analysis.KindGeoPoint, ""),
//	    geosearch.WithField("area", analysis.KindGeoJSON, ""),
//	)
//	idx.Add(ctx, []byte(`{"location": [37.608, 55.709]}`))
//
//	snap := idx.Commit(ctx)
//
// # Filters
//
// Region filters test a query shape against each document:
//
//	bbox, _ := shape.Parse([]byte(`{"type": "Polygon", "coordinates": [...]}`))
//	f, _ := snap.GeoFilter("area", search.Intersects, bbox)
//	hits, _ := snap.Search(f).Execute(ctx)
//
// Distance filters match documents within a range of an origin:
//
//	origin := s2.PointFromLatLng(s2.LatLngFromDegrees(55.70892, 37.607768))
//	f, _ := snap.DistanceFilter("location", origin, search.Range{Max: 300, MaxBound: search.Inclusive})
//	f.SetScorer(search.RawDistance{})
//	nearest, _ := snap.Search(f).TopK(5, search.Ascending).Execute(ctx)
//
// # Snapshots
//
// Commit publishes an immutable Snapshot. Snapshots are safe for concurrent
// searches while the Index keeps accepting documents.
//
// # Observability
//
// WithLogger enables structured logging through log/slog; WithMetrics
// accepts a metrics.Collector such as metrics.Basic or the Prometheus
// collector in metrics/prommetrics.
package geosearch
