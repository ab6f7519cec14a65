package geosearch

import (
	"context"
	"fmt"

	"github.com/hupe1980/geosearch/codec"
	"github.com/hupe1980/geosearch/internal/cache"
	"github.com/hupe1980/geosearch/s2terms"
	"github.com/hupe1980/geosearch/segment"
)

// Index accumulates documents and publishes immutable snapshots for search.
// It is safe for concurrent use.
type Index struct {
	writer *segment.Writer
	shapes *cache.Shapes
	opts   options
}

// New creates an index. At least one field must be declared with WithField.
func New(optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	wopts := []segment.Option{
		segment.WithLogger(o.logger.Logger),
		segment.WithMetrics(o.metrics),
		segment.WithCompression(o.compression),
	}
	if o.workers > 0 {
		wopts = append(wopts, segment.WithWorkers(o.workers))
	}
	if o.codec != "" {
		c, ok := codec.ByName(o.codec)
		if !ok {
			o.logger.Warn("index configuration rejected", "codec", o.codec)
			return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalidConfig, o.codec)
		}
		wopts = append(wopts, segment.WithCodec(c))
	}
	w, err := segment.NewWriter(o.fields, wopts...)
	if err != nil {
		o.logger.Warn("index configuration rejected", "error", err)
		return nil, translateError(err)
	}
	ix := &Index{writer: w, opts: o}
	if o.shapeCache > 0 {
		ix.shapes = cache.NewShapes(o.shapeCache)
	}
	return ix, nil
}

// Add indexes a JSON document and returns its id. Field values the field's
// analyzer rejects are skipped; the document is still added.
func (ix *Index) Add(ctx context.Context, doc []byte) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id, err := ix.writer.Add(segment.Document(doc))
	ix.opts.logger.LogAdd(ctx, id, err)
	return id, translateError(err)
}

// AddBatch indexes documents concurrently and returns their ids, which are
// contiguous and follow input order. On error no document is added.
func (ix *Index) AddBatch(ctx context.Context, docs [][]byte) ([]uint32, error) {
	batch := make([]segment.Document, len(docs))
	for i, d := range docs {
		batch[i] = segment.Document(d)
	}
	ids, err := ix.writer.AddBatch(ctx, batch)
	ix.opts.logger.LogBatchAdd(ctx, len(docs), err)
	return ids, translateError(err)
}

// DocCount returns the number of documents added so far.
func (ix *Index) DocCount() uint32 { return ix.writer.DocCount() }

// Commit publishes every document added so far as a snapshot. The index
// keeps accepting documents; later adds are not visible in the snapshot.
func (ix *Index) Commit(ctx context.Context) *Snapshot {
	seg := ix.writer.Segment()
	ix.opts.logger.LogCommit(ctx, seg.DocCount(), len(seg.Fields()))
	return &Snapshot{seg: seg, shapes: ix.shapes, logger: ix.opts.logger, metrics: ix.opts.metrics}
}

// PrepareQuery returns the term options that filters over field must use.
func (ix *Index) PrepareQuery(field string) (s2terms.Options, error) {
	var o s2terms.Options
	if err := ix.writer.PrepareQuery(field, &o); err != nil {
		return s2terms.Options{}, translateError(err)
	}
	return o, nil
}

// CacheStats reports the effectiveness of the shape cache.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Len       int
}

// CacheStats returns shape cache statistics. It is zero when the cache is
// disabled.
func (ix *Index) CacheStats() CacheStats {
	if ix.shapes == nil {
		return CacheStats{}
	}
	st := ix.shapes.Stats()
	return CacheStats{Hits: st.Hits, Misses: st.Misses, Evictions: st.Evictions, Len: st.Len}
}
