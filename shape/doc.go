// Package shape provides the geometry value indexed and queried by geo
// analyzers and filters.
//
// A Shape is a tagged union over points, polylines, polygons (including
// latitude/longitude rectangles and multi-polygons), multi-points and
// multi-polylines, backed by S2 primitives on the unit sphere. Shapes are
// parsed from GeoJSON geometry objects or from bare coordinate arrays:
//
//	s, err := shape.Parse([]byte(`{"type": "Point", "coordinates": [37.6, 55.7]}`))
//	s, err := shape.ParseCoordinates([]byte(`[37.6, 55.7]`), true)
//
// Shapes are immutable once parsed.
package shape
