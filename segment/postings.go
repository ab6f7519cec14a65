package segment

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Postings is the ascending set of documents that carry a term.
// It wraps a 32-bit roaring bitmap.
type Postings struct {
	rb *roaring.Bitmap
}

// NewPostings creates an empty posting list.
func NewPostings() *Postings {
	return &Postings{rb: roaring.New()}
}

// PostingsOf creates a posting list holding docs.
func PostingsOf(docs ...uint32) *Postings {
	return &Postings{rb: roaring.BitmapOf(docs...)}
}

// Add adds a document.
func (p *Postings) Add(doc uint32) {
	p.rb.Add(doc)
}

// Contains checks if a document is in the list.
func (p *Postings) Contains(doc uint32) bool {
	return p.rb.Contains(doc)
}

// IsEmpty returns true if the list is empty.
func (p *Postings) IsEmpty() bool {
	return p.rb.IsEmpty()
}

// Cardinality returns the number of documents.
func (p *Postings) Cardinality() uint64 {
	return p.rb.GetCardinality()
}

// Clone returns a deep copy.
func (p *Postings) Clone() *Postings {
	return &Postings{rb: p.rb.Clone()}
}

// Or adds all documents of other.
func (p *Postings) Or(other *Postings) {
	p.rb.Or(other.rb)
}

// Docs iterates the documents in ascending order.
func (p *Postings) Docs() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := p.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Cursor returns a forward iterator that supports skipping ahead.
func (p *Postings) Cursor() roaring.IntPeekable {
	return p.rb.Iterator()
}

// ToArray returns the documents in ascending order.
func (p *Postings) ToArray() []uint32 {
	return p.rb.ToArray()
}

// SizeInBytes returns the in-memory size of the list.
func (p *Postings) SizeInBytes() uint64 {
	return p.rb.GetSizeInBytes()
}

func (p *Postings) optimize() {
	p.rb.RunOptimize()
}
