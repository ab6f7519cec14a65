package search

// NoMoreDocs is the document id of an exhausted iterator.
const NoMoreDocs = ^uint32(0)

// DocIterator iterates matching documents in ascending id order.
type DocIterator interface {
	// Next advances to the next match and reports whether there is one.
	Next() bool
	// Doc returns the current document, or NoMoreDocs once exhausted.
	// It is undefined before the first call to Next or Seek.
	Doc() uint32
	// Seek advances to the first match with id >= target and returns it, or
	// NoMoreDocs. Seeking backwards keeps the current document.
	Seek(target uint32) uint32
	// Score returns the score of the current document.
	Score() float32
	// Cost returns an upper bound of the number of matches.
	Cost() int64
}

type emptyIterator struct{}

// Empty returns an iterator without matches.
func Empty() DocIterator { return emptyIterator{} }

func (emptyIterator) Next() bool         { return false }
func (emptyIterator) Doc() uint32        { return NoMoreDocs }
func (emptyIterator) Seek(uint32) uint32 { return NoMoreDocs }
func (emptyIterator) Score() float32     { return 0 }
func (emptyIterator) Cost() int64        { return 0 }
