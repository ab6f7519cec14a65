// Package s2terms turns points and regions on the sphere into index and query
// terms built from S2 cell tokens.
//
// Every region is approximated by a covering of S2 cells between MinLevel and
// MaxLevel. A cell contributes two kinds of terms:
//
//   - ancestor terms ("<token>"): emitted for a cell and all of its ancestors,
//     so that a query cell finds every indexed cell below it;
//   - covering terms ("$<token>"): emitted for indexed cells that stop above
//     the maximum level, so that a query cell finds every indexed region that
//     covers one of its ancestors.
//
// Index and query terms are only compatible when both sides use identical
// Options. A points-only index skips covering terms entirely.
//
// # Usage
//
//	idx := s2terms.NewIndexer(s2terms.DefaultOptions())
//	terms := idx.IndexTermsForRegion(polygon)
//	query := idx.QueryTermsForRegion(s2.CapFromCenterAngle(center, radius))
package s2terms
