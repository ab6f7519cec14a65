package search

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/geosearch/segment"
)

// termIterator walks the posting list of one query term.
type termIterator struct {
	cursor roaring.IntPeekable
	cur    uint32
}

func newTermIterator(p *segment.Postings) termIterator {
	it := termIterator{cursor: p.Cursor()}
	it.next()
	return it
}

// doc returns the current docID. Returns NoMoreDocs if exhausted.
func (it *termIterator) doc() uint32 { return it.cur }

// next advances to the next posting.
func (it *termIterator) next() {
	if it.cursor.HasNext() {
		it.cur = it.cursor.Next()
	} else {
		it.cur = NoMoreDocs
	}
}

// advance moves to the first posting with docID >= target.
func (it *termIterator) advance(target uint32) {
	if it.cur >= target {
		return
	}
	it.cursor.AdvanceIfNeeded(target)
	it.next()
}

// disjunction is a document-at-a-time union of term posting lists. A
// document matches if any term carries it; every match scores the boost.
type disjunction struct {
	iterators []termIterator
	cur       uint32
	started   bool
	boost     float32
	cost      int64
}

func newDisjunction(postings []*segment.Postings, boost float32) *disjunction {
	d := &disjunction{
		iterators: make([]termIterator, 0, len(postings)),
		cur:       NoMoreDocs,
		boost:     boost,
	}
	for _, p := range postings {
		d.iterators = append(d.iterators, newTermIterator(p))
		d.cost += int64(p.Cardinality())
	}
	return d
}

// Next implements DocIterator.
func (d *disjunction) Next() bool {
	if d.started {
		if d.cur == NoMoreDocs {
			return false
		}
		for i := range d.iterators {
			if d.iterators[i].doc() == d.cur {
				d.iterators[i].next()
			}
		}
	}
	d.started = true
	d.cur = d.minDoc()
	return d.cur != NoMoreDocs
}

// Seek implements DocIterator.
func (d *disjunction) Seek(target uint32) uint32 {
	if d.started && (d.cur == NoMoreDocs || d.cur >= target) {
		return d.cur
	}
	for i := range d.iterators {
		d.iterators[i].advance(target)
	}
	d.started = true
	d.cur = d.minDoc()
	return d.cur
}

// minDoc finds the smallest current doc with a linear scan over the terms.
func (d *disjunction) minDoc() uint32 {
	minDoc := NoMoreDocs
	for i := range d.iterators {
		if doc := d.iterators[i].doc(); doc < minDoc {
			minDoc = doc
		}
	}
	return minDoc
}

// Doc implements DocIterator.
func (d *disjunction) Doc() uint32 { return d.cur }

// Score implements DocIterator.
func (d *disjunction) Score() float32 { return d.boost }

// Cost implements DocIterator.
func (d *disjunction) Cost() int64 { return d.cost }
