package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/codec"
	"github.com/hupe1980/geosearch/metrics"
	"github.com/hupe1980/geosearch/s2terms"
)

var (
	// ErrInvalidDocument is returned for documents that are not JSON objects.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidField is returned for unusable field configurations.
	ErrInvalidField = errors.New("invalid field")
)

// Document is a JSON object. Field values are looked up by field name, which
// may be a dotted path into nested objects.
type Document []byte

// FieldConfig declares an indexed field and its analyzer.
type FieldConfig struct {
	Name   string
	Kind   analysis.Kind
	Config []byte
}

// Writer accumulates documents into a segment. It is safe for concurrent use.
type Writer struct {
	fields []FieldConfig
	protos map[string]*analysis.Analyzer
	sets   sync.Pool

	compression CompressionType
	workers     int
	logger      *slog.Logger
	metrics     metrics.Collector
	codec       codec.Codec

	mu    sync.Mutex
	next  uint32
	index map[string]*field
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = l
	}
}

// WithCompression sets the stored value compression. Defaults to LZ4.
func WithCompression(c CompressionType) Option {
	return func(w *Writer) {
		w.compression = c
	}
}

// WithWorkers limits the goroutines used by AddBatch. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithCodec sets the codec the field analyzers use for JSON values.
func WithCodec(c codec.Codec) Option {
	return func(w *Writer) {
		w.codec = c
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(w *Writer) {
		if c != nil {
			w.metrics = c
		}
	}
}

// NewWriter creates a writer for the given fields. Every field analyzer is
// built up front; an invalid configuration fails the writer.
func NewWriter(fields []FieldConfig, opts ...Option) (*Writer, error) {
	w := &Writer{
		fields:      fields,
		protos:      make(map[string]*analysis.Analyzer, len(fields)),
		compression: CompressionLZ4,
		workers:     runtime.GOMAXPROCS(0),
		metrics:     metrics.Noop{},
	}
	for _, opt := range opts {
		opt(w)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields configured", ErrInvalidField)
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidField)
		}
		if _, ok := w.protos[f.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidField, f.Name)
		}
		var aopts []analysis.Option
		if w.logger != nil {
			aopts = append(aopts, analysis.WithLogger(w.logger.With("field", f.Name)))
		}
		if w.codec != nil {
			aopts = append(aopts, analysis.WithCodec(w.codec))
		}
		a, err := analysis.Make(f.Kind, f.Config, aopts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidField, f.Name, err)
		}
		w.protos[f.Name] = a
	}

	w.sets.New = func() any {
		set := make(map[string]*analysis.Analyzer, len(w.protos))
		for name, a := range w.protos {
			set[name] = a.Clone()
		}
		return set
	}
	w.reset()
	return w, nil
}

func (w *Writer) reset() {
	w.next = 0
	w.index = make(map[string]*field, len(w.fields))
	for _, f := range w.fields {
		w.index[f.Name] = &field{
			analyzer: w.protos[f.Name],
			postings: make(map[string]*Postings),
			docs:     NewPostings(),
			stored:   newColumn(w.compression),
		}
	}
}

// analyzed is the index data of one field value.
type analyzed struct {
	field string
	terms []string
	block []byte
}

// analyze runs the field analyzers over doc. It returns the indexable values
// and the number of values rejected by their analyzer.
func (w *Writer) analyze(doc Document) ([]analyzed, int, error) {
	if !gjson.ValidBytes(doc) {
		return nil, 0, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, 0, fmt.Errorf("%w: expected an object", ErrInvalidDocument)
	}

	set := w.sets.Get().(map[string]*analysis.Analyzer)
	defer w.sets.Put(set)

	var (
		values  []analyzed
		skipped int
	)
	for _, f := range w.fields {
		v := root.Get(f.Name)
		if !v.Exists() {
			continue
		}
		a := set[f.Name]
		if !a.Reset([]byte(v.Raw)) {
			skipped++
			w.metrics.RecordTokenize(f.Name, 0, false)
			if w.logger != nil {
				w.logger.Debug("skipping geo value", "field", f.Name, "error", a.Err())
			}
			continue
		}
		var terms []string
		for a.Next() {
			terms = append(terms, a.Term())
		}
		block, err := compressBlock(a.Stored(), w.compression)
		if err != nil {
			return nil, skipped, fmt.Errorf("compress %q: %w", f.Name, err)
		}
		w.metrics.RecordTokenize(f.Name, len(terms), true)
		values = append(values, analyzed{field: f.Name, terms: terms, block: block})
	}
	return values, skipped, nil
}

func (w *Writer) commit(values []analyzed) uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commitLocked(values)
}

func (w *Writer) commitLocked(values []analyzed) uint32 {
	id := w.next
	w.next++
	for _, v := range values {
		f := w.index[v.field]
		for _, term := range v.terms {
			p, ok := f.postings[term]
			if !ok {
				p = NewPostings()
				f.postings[term] = p
			}
			p.Add(id)
		}
		f.docs.Add(id)
		f.stored.addBlock(id, v.block)
	}
	return id
}

func (w *Writer) add(doc Document) (uint32, int, error) {
	values, skipped, err := w.analyze(doc)
	if err != nil {
		return 0, skipped, err
	}
	return w.commit(values), skipped, nil
}

// Add indexes one document and returns its id. Field values rejected by
// their analyzer are skipped; the document is still added.
func (w *Writer) Add(doc Document) (uint32, error) {
	start := time.Now()
	id, skipped, err := w.add(doc)
	w.metrics.RecordIndex(1, skipped, time.Since(start), err)
	return id, err
}

// AddBatch analyzes docs concurrently and indexes them in input order, so
// the returned ids are contiguous. On error no document of the batch is
// added.
func (w *Writer) AddBatch(ctx context.Context, docs []Document) ([]uint32, error) {
	start := time.Now()
	values := make([][]analyzed, len(docs))

	var skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, n, err := w.analyze(doc)
			skipped.Add(int64(n))
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			values[i] = v
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	w.metrics.RecordIndex(len(docs), int(skipped.Load()), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	ids := make([]uint32, len(docs))
	w.mu.Lock()
	for i, v := range values {
		ids[i] = w.commitLocked(v)
	}
	w.mu.Unlock()
	return ids, nil
}

// PrepareQuery writes the term options for filters over a field.
func (w *Writer) PrepareQuery(name string, o *s2terms.Options) error {
	a, ok := w.protos[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	a.PrepareQuery(o)
	return nil
}

// Fields returns the field configurations.
func (w *Writer) Fields() []FieldConfig { return w.fields }

// DocCount returns the number of documents added since the last Flush.
func (w *Writer) DocCount() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.next
}

// Segment returns an immutable snapshot of the documents added so far.
// The writer keeps accumulating.
func (w *Writer) Segment() *Segment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// Flush returns the segment and resets the writer.
func (w *Writer) Flush() *Segment {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.snapshot()
	w.reset()
	return s
}

func (w *Writer) snapshot() *Segment {
	s := &Segment{docCount: w.next, fields: make(map[string]*field, len(w.index))}
	for name, f := range w.index {
		postings := make(map[string]*Postings, len(f.postings))
		for term, p := range f.postings {
			c := p.Clone()
			c.optimize()
			postings[term] = c
		}
		docs := f.docs.Clone()
		docs.optimize()
		s.fields[name] = &field{
			analyzer: f.analyzer,
			postings: postings,
			docs:     docs,
			stored:   f.stored.snapshot(),
		}
	}
	return s
}
