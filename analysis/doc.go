// Package analysis implements the geo analyzers that turn one field value
// into a finite sequence of index terms.
//
// Two analyzer kinds exist:
//
//   - "geojson" parses GeoJSON geometry and indexes it in one of three modes:
//     "shape" (the full region, or point terms for a point), "centroid" (the
//     centroid as a point) and "point" (points only, other geometries are
//     rejected);
//   - "geopoint" indexes a [lon, lat] array, or a latitude/longitude pair read
//     from configured paths of a JSON object.
//
// An Analyzer follows a reset/next cycle:
//
//	a, err := analysis.Make(analysis.KindGeoJSON, []byte(`{"mode": "shape"}`))
//	if err != nil {
//		return err
//	}
//	if a.Reset(value) {
//		for a.Next() {
//			emit(a.Value())
//		}
//	}
//
// Analyzers are not safe for concurrent use; give each worker its own Clone.
package analysis
