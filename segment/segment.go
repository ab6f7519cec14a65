package segment

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/s2terms"
)

var (
	// ErrNotStored is returned when a document has no stored value for a field.
	ErrNotStored = errors.New("value not stored")
	// ErrCorrupt is returned when a stored value fails verification.
	ErrCorrupt = errors.New("stored value corrupt")
	// ErrUnknownField is returned for fields the segment does not index.
	ErrUnknownField = errors.New("unknown field")
)

// Reader is read access to an indexed segment.
type Reader interface {
	// Postings returns the documents carrying term in field, or nil.
	// The result must not be modified.
	Postings(field, term string) *Postings
	// FieldDocs returns the documents with an indexed value in field, or nil.
	FieldDocs(field string) *Postings
	// Stored returns the stored value of field for doc.
	Stored(field string, doc uint32) ([]byte, error)
	// DocCount returns the number of documents in the segment.
	DocCount() uint32
}

// column holds stored values in ascending document order.
type column struct {
	compression CompressionType
	docs        []uint32
	offsets     []uint32 // len(docs)+1 boundaries into data
	data        []byte
}

func newColumn(c CompressionType) column {
	return column{compression: c, offsets: []uint32{0}}
}

// addBlock appends an encoded value. Documents arrive in ascending order.
func (c *column) addBlock(doc uint32, block []byte) {
	c.docs = append(c.docs, doc)
	c.data = append(c.data, block...)
	c.offsets = append(c.offsets, uint32(len(c.data)))
}

// snapshot shares the written prefix; the writer only ever appends.
func (c *column) snapshot() column {
	n := len(c.docs)
	return column{
		compression: c.compression,
		docs:        c.docs[:n:n],
		offsets:     c.offsets[: n+1 : n+1],
		data:        c.data[:len(c.data):len(c.data)],
	}
}

func (c *column) get(doc uint32) ([]byte, error) {
	i, ok := slices.BinarySearch(c.docs, doc)
	if !ok {
		return nil, ErrNotStored
	}
	value, err := decompressBlock(c.data[c.offsets[i]:c.offsets[i+1]], c.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: doc %d: %w", ErrCorrupt, doc, err)
	}
	return value, nil
}

type field struct {
	analyzer *analysis.Analyzer
	postings map[string]*Postings
	docs     *Postings
	stored   column
}

// Segment is an immutable set of indexed documents.
type Segment struct {
	docCount uint32
	fields   map[string]*field
}

var _ Reader = (*Segment)(nil)

// Postings implements Reader.
func (s *Segment) Postings(name, term string) *Postings {
	f, ok := s.fields[name]
	if !ok {
		return nil
	}
	return f.postings[term]
}

// FieldDocs implements Reader.
func (s *Segment) FieldDocs(name string) *Postings {
	f, ok := s.fields[name]
	if !ok {
		return nil
	}
	return f.docs
}

// Stored implements Reader.
func (s *Segment) Stored(name string, doc uint32) ([]byte, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f.stored.get(doc)
}

// DocCount implements Reader.
func (s *Segment) DocCount() uint32 { return s.docCount }

// Fields returns the indexed field names in sorted order.
func (s *Segment) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TermCount returns the number of distinct terms of a field.
func (s *Segment) TermCount(name string) int {
	f, ok := s.fields[name]
	if !ok {
		return 0
	}
	return len(f.postings)
}

// PrepareQuery writes the term options for filters over a field.
func (s *Segment) PrepareQuery(name string, o *s2terms.Options) error {
	f, ok := s.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.analyzer.PrepareQuery(o)
	return nil
}
