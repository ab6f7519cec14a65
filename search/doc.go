// Package search evaluates spatial predicates over a segment.
//
// Filters run in two stages. Query terms generated with the field's term
// options select candidate documents through a disjunction over their
// posting lists; the candidate set is a sound over-approximation. Predicates
// that need exactness (Contains, IsContained, distance ranges) then read each
// candidate's stored geometry from the reader and verify it.
//
// A filter is prepared once against a reader and may then be executed many
// times, concurrently, against the same immutable segment:
//
//	f := search.NewGeoFilter("geometry", search.Intersects, s)
//	p, err := f.Prepare(seg)
//	if err != nil {
//		return err
//	}
//	hits := search.Collect(p.Execute(seg), 10)
package search
