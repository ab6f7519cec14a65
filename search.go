package geosearch

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/geosearch/search"
	"github.com/hupe1980/geosearch/segment"
)

// Filter is a spatial query over one field. Both search.GeoFilter and
// search.GeoDistanceFilter implement it.
type Filter interface {
	Field() string
	Prepare(r segment.Reader) (*search.PreparedFilter, error)
}

func filterName(f Filter) string {
	switch f := f.(type) {
	case *search.GeoFilter:
		return f.Options().Type.String()
	case *search.GeoDistanceFilter:
		return "distance"
	default:
		return "custom"
	}
}

// Search creates a new fluent search builder for the given filter.
//
// Example:
//
//	hits, err := snap.Search(filter).
//	    Limit(10).
//	    Execute(ctx)
//
//	// Or nearest first, with a distance scorer attached to the filter:
//	hits, err := snap.Search(filter).TopK(5, search.Ascending).Execute(ctx)
func (s *Snapshot) Search(f Filter) *SearchBuilder {
	return &SearchBuilder{snap: s, filter: f}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	snap   *Snapshot
	filter Filter
	limit  int
	topK   bool
	order  search.Order
	opts   []search.ExecOption
}

// Limit caps the number of hits. Zero returns every match.
func (sb *SearchBuilder) Limit(n int) *SearchBuilder {
	sb.limit = n
	return sb
}

// TopK returns the k best-scored hits instead of the first matches in
// document order.
func (sb *SearchBuilder) TopK(k int, order search.Order) *SearchBuilder {
	sb.limit = k
	sb.topK = true
	sb.order = order
	return sb
}

// WithExecOptions passes options to the filter execution.
func (sb *SearchBuilder) WithExecOptions(opts ...search.ExecOption) *SearchBuilder {
	sb.opts = append(sb.opts, opts...)
	return sb
}

func (sb *SearchBuilder) iterator() (search.DocIterator, error) {
	if sb.filter == nil {
		return nil, translateError(search.ErrInvalidFilter)
	}
	p, err := sb.filter.Prepare(sb.snap.seg)
	if err != nil {
		return nil, translateError(err)
	}
	opts := []search.ExecOption{search.WithLogger(sb.snap.logger.Logger)}
	if sb.snap.shapes != nil {
		opts = append(opts, search.WithShapeCache(sb.snap.shapes))
	}
	return p.Execute(sb.snap.seg, append(opts, sb.opts...)...), nil
}

// Execute runs the search and returns the hits.
func (sb *SearchBuilder) Execute(ctx context.Context) ([]search.Hit, error) {
	start := time.Now()
	hits, err := sb.execute(ctx)

	field, name := "", "none"
	if sb.filter != nil {
		field, name = sb.filter.Field(), filterName(sb.filter)
	}
	sb.snap.metrics.RecordQuery(name, len(hits), time.Since(start), err)
	sb.snap.logger.LogSearch(ctx, field, name, len(hits), err)
	return hits, err
}

func (sb *SearchBuilder) execute(ctx context.Context) ([]search.Hit, error) {
	it, err := sb.iterator()
	if err != nil {
		return nil, err
	}
	if sb.topK {
		return search.TopK(ctx, it, sb.limit, sb.order)
	}
	return search.CollectContext(ctx, it, sb.limit)
}

// Stream returns an iterator over hits in document order. The iterator
// supports early termination by breaking from the loop.
//
// Example:
//
//	for hit, err := range snap.Search(filter).Stream(ctx) {
//	    if err != nil { break }
//	    process(hit)
//	}
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[search.Hit, error] {
	return func(yield func(search.Hit, error) bool) {
		it, err := sb.iterator()
		if err != nil {
			yield(search.Hit{}, err)
			return
		}
		for n := 0; it.Next(); n++ {
			if err := ctx.Err(); err != nil {
				yield(search.Hit{}, err)
				return
			}
			if !yield(search.Hit{Doc: it.Doc(), Score: it.Score()}, nil) {
				return
			}
			if sb.limit > 0 && n+1 == sb.limit {
				return
			}
		}
	}
}

// First returns the first hit, or ErrNotFound.
func (sb *SearchBuilder) First(ctx context.Context) (search.Hit, error) {
	if !sb.topK {
		sb.limit = 1
	}
	hits, err := sb.Execute(ctx)
	if err != nil {
		return search.Hit{}, err
	}
	if len(hits) == 0 {
		return search.Hit{}, ErrNotFound
	}
	return hits[0], nil
}

// Count executes the search and returns the number of hits.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	hits, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(hits), nil
}

// Exists checks if at least one document matches.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	sb.limit = 1
	sb.topK = false
	hits, err := sb.Execute(ctx)
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}
