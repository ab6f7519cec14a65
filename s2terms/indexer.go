package s2terms

import (
	"github.com/golang/geo/s2"
)

// Indexer generates index and query terms. It is not safe for concurrent use
// because the underlying coverer is reused between calls.
type Indexer struct {
	opts Options
	rc   *s2.RegionCoverer
}

// NewIndexer returns an Indexer for opts. All reads and writes of a field must
// use the same options.
func NewIndexer(opts Options) *Indexer {
	if opts.LevelMod == 0 {
		opts.LevelMod = 1
	}
	if opts.Marker == 0 {
		opts.Marker = Marker
	}
	return &Indexer{
		opts: opts,
		rc: &s2.RegionCoverer{
			MinLevel: opts.MinLevel,
			MaxLevel: opts.MaxLevel,
			LevelMod: opts.LevelMod,
			MaxCells: opts.MaxCells,
		},
	}
}

// Options returns the indexer configuration.
func (ix *Indexer) Options() Options { return ix.opts }

// Covering returns the cell covering used for region terms.
func (ix *Indexer) Covering(r s2.Region) s2.CellUnion {
	return ix.rc.Covering(r)
}

// GetIndexTerms returns the index terms for a point or a region.
func (ix *Indexer) GetIndexTerms(v any) []string {
	switch g := v.(type) {
	case s2.Point:
		return ix.IndexTermsForPoint(nil, g)
	case s2.Region:
		return ix.IndexTermsForRegion(nil, g)
	default:
		return nil
	}
}

// IndexTermsForPoint appends the terms of an indexed point to dst.
func (ix *Indexer) IndexTermsForPoint(dst []string, p s2.Point) []string {
	id := s2.CellFromPoint(p).ID()
	for level := ix.opts.MinLevel; level <= ix.opts.MaxLevel; level += ix.opts.LevelMod {
		dst = append(dst, ix.ancestorTerm(id.Parent(level)))
	}
	return dst
}

// IndexTermsForRegion appends the terms of an indexed region to dst.
func (ix *Indexer) IndexTermsForRegion(dst []string, r s2.Region) []string {
	return ix.IndexTermsForCovering(dst, ix.rc.Covering(r))
}

// IndexTermsForCovering appends the index terms of a canonical covering.
func (ix *Indexer) IndexTermsForCovering(dst []string, covering s2.CellUnion) []string {
	trueMax := ix.opts.TrueMaxLevel()
	prev := s2.CellID(0)
	for _, id := range covering {
		level := id.Level()
		if level < trueMax {
			dst = append(dst, ix.coveringTerm(id))
		}
		if level == trueMax || !ix.opts.OptimizeForSpace {
			dst = append(dst, ix.ancestorTerm(id))
		}
		for level -= ix.opts.LevelMod; level >= ix.opts.MinLevel; level -= ix.opts.LevelMod {
			ancestor := id.Parent(level)
			if prev != 0 && prev.Level() > level && prev.Parent(level) == ancestor {
				break
			}
			dst = append(dst, ix.ancestorTerm(ancestor))
		}
		prev = id
	}
	return dst
}

// QueryTermsForPoint appends the terms matching any indexed value that
// contains p.
func (ix *Indexer) QueryTermsForPoint(dst []string, p s2.Point) []string {
	id := s2.CellFromPoint(p).ID()
	level := ix.opts.TrueMaxLevel()
	dst = append(dst, ix.ancestorTerm(id.Parent(level)))
	if ix.opts.PointsOnly {
		return dst
	}
	for ; level >= ix.opts.MinLevel; level -= ix.opts.LevelMod {
		dst = append(dst, ix.coveringTerm(id.Parent(level)))
	}
	return dst
}

// QueryTermsForRegion appends the terms matching any indexed value that may
// intersect r.
func (ix *Indexer) QueryTermsForRegion(dst []string, r s2.Region) []string {
	return ix.QueryTermsForCovering(dst, ix.rc.Covering(r))
}

// QueryTermsForCovering appends the query terms of a canonical covering.
func (ix *Indexer) QueryTermsForCovering(dst []string, covering s2.CellUnion) []string {
	trueMax := ix.opts.TrueMaxLevel()
	prev := s2.CellID(0)
	for _, id := range covering {
		level := id.Level()
		dst = append(dst, ix.ancestorTerm(id))
		if ix.opts.PointsOnly {
			continue
		}
		if ix.opts.OptimizeForSpace && level < trueMax {
			dst = append(dst, ix.coveringTerm(id))
		}
		for level -= ix.opts.LevelMod; level >= ix.opts.MinLevel; level -= ix.opts.LevelMod {
			ancestor := id.Parent(level)
			if prev != 0 && prev.Level() > level && prev.Parent(level) == ancestor {
				break
			}
			dst = append(dst, ix.coveringTerm(ancestor))
		}
		prev = id
	}
	return dst
}

func (ix *Indexer) ancestorTerm(id s2.CellID) string {
	return id.ToToken()
}

func (ix *Indexer) coveringTerm(id s2.CellID) string {
	return string(ix.opts.Marker) + id.ToToken()
}
