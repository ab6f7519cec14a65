package geosearch

import (
	"github.com/golang/geo/s2"

	"github.com/hupe1980/geosearch/internal/cache"
	"github.com/hupe1980/geosearch/metrics"
	"github.com/hupe1980/geosearch/search"
	"github.com/hupe1980/geosearch/segment"
	"github.com/hupe1980/geosearch/shape"
)

// Snapshot is an immutable view of an index. It is safe for concurrent use.
type Snapshot struct {
	seg     *segment.Segment
	shapes  *cache.Shapes
	logger  *Logger
	metrics metrics.Collector
}

// DocCount returns the number of documents in the snapshot.
func (s *Snapshot) DocCount() uint32 { return s.seg.DocCount() }

// Fields returns the indexed field names in sorted order.
func (s *Snapshot) Fields() []string { return s.seg.Fields() }

// Reader returns the underlying segment for executing prepared filters.
func (s *Snapshot) Reader() segment.Reader { return s.seg }

// Stored returns the stored geometry of field for doc: GeoJSON for geojson
// fields, a [lon, lat] array for geopoint fields.
func (s *Snapshot) Stored(field string, doc uint32) ([]byte, error) {
	raw, err := s.seg.Stored(field, doc)
	return raw, translateError(err)
}

// GeoFilter returns a filter over field with the field's term options.
func (s *Snapshot) GeoFilter(field string, typ search.FilterType, sh *shape.Shape) (*search.GeoFilter, error) {
	f := search.NewGeoFilter(field, typ, sh)
	if err := s.seg.PrepareQuery(field, &f.Options().Options); err != nil {
		return nil, translateError(err)
	}
	return f, nil
}

// DistanceFilter returns a distance filter over field with the field's term
// options.
func (s *Snapshot) DistanceFilter(field string, origin s2.Point, r search.Range) (*search.GeoDistanceFilter, error) {
	f := search.NewGeoDistanceFilter(field, origin, r)
	if err := s.seg.PrepareQuery(field, &f.Options().Options); err != nil {
		return nil, translateError(err)
	}
	return f, nil
}
