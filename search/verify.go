package search

import (
	"log/slog"

	"github.com/hupe1980/geosearch/segment"
	"github.com/hupe1980/geosearch/shape"
)

// matchFunc decides whether a candidate's stored shape matches and returns
// its score.
type matchFunc func(candidate *shape.Shape) (float32, bool)

// ExecOption configures one execution of a prepared filter.
type ExecOption func(*execOptions)

type execOptions struct {
	logger *slog.Logger
	shapes ShapeCache
}

// ShapeCache holds decoded stored geometry across executions. Entries must
// only be shared between readers that store the same value for a doc.
type ShapeCache interface {
	Get(field string, doc uint32) (*shape.Shape, bool)
	Put(field string, doc uint32, s *shape.Shape)
}

// WithLogger logs candidates whose stored geometry cannot be read.
func WithLogger(l *slog.Logger) ExecOption {
	return func(o *execOptions) {
		o.logger = l
	}
}

// WithShapeCache reuses decoded geometry during verification.
func WithShapeCache(c ShapeCache) ExecOption {
	return func(o *execOptions) {
		o.shapes = c
	}
}

// verifyIterator filters candidates by their stored geometry. The reader is
// borrowed for the lifetime of the iterator.
type verifyIterator struct {
	candidates DocIterator
	reader     segment.Reader
	field      string
	match      matchFunc
	logger     *slog.Logger
	shapes     ShapeCache

	cur   uint32
	score float32
}

func newVerifyIterator(candidates DocIterator, r segment.Reader, field string, match matchFunc, o execOptions) *verifyIterator {
	return &verifyIterator{
		candidates: candidates,
		reader:     r,
		field:      field,
		match:      match,
		logger:     o.logger,
		shapes:     o.shapes,
		cur:        NoMoreDocs,
	}
}

// Next implements DocIterator.
func (v *verifyIterator) Next() bool {
	for v.candidates.Next() {
		if v.check(v.candidates.Doc()) {
			return true
		}
	}
	v.cur = NoMoreDocs
	return false
}

// Seek implements DocIterator.
func (v *verifyIterator) Seek(target uint32) uint32 {
	if v.cur != NoMoreDocs && v.cur >= target {
		return v.cur
	}
	doc := v.candidates.Seek(target)
	for doc != NoMoreDocs {
		if v.check(doc) {
			return doc
		}
		if !v.candidates.Next() {
			break
		}
		doc = v.candidates.Doc()
	}
	v.cur = NoMoreDocs
	return NoMoreDocs
}

// check verifies doc. A missing or unreadable geometry is not a match.
func (v *verifyIterator) check(doc uint32) bool {
	s, err := v.load(doc)
	if err != nil {
		v.skip(doc, err)
		return false
	}
	score, ok := v.match(s)
	if !ok {
		return false
	}
	v.cur, v.score = doc, score
	return true
}

func (v *verifyIterator) load(doc uint32) (*shape.Shape, error) {
	if v.shapes != nil {
		if s, ok := v.shapes.Get(v.field, doc); ok {
			return s, nil
		}
	}
	raw, err := v.reader.Stored(v.field, doc)
	if err != nil {
		return nil, err
	}
	s, err := shape.Parse(raw)
	if err != nil {
		return nil, err
	}
	if v.shapes != nil {
		v.shapes.Put(v.field, doc, s)
	}
	return s, nil
}

func (v *verifyIterator) skip(doc uint32, err error) {
	if v.logger != nil {
		v.logger.Debug("skipping candidate", "field", v.field, "doc", doc, "error", err)
	}
}

// Doc implements DocIterator.
func (v *verifyIterator) Doc() uint32 { return v.cur }

// Score implements DocIterator.
func (v *verifyIterator) Score() float32 { return v.score }

// Cost implements DocIterator. Candidates rejected by verification still
// count.
func (v *verifyIterator) Cost() int64 { return v.candidates.Cost() }
