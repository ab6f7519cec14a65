// Package metrics defines the operational metrics hooks of the geo index.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// package prommetrics for a Prometheus implementation.
type Collector interface {
	// RecordIndex is called after each indexing call. docs is the number of
	// documents attempted, skipped the number of field values rejected by
	// their analyzer.
	RecordIndex(docs, skipped int, duration time.Duration, err error)

	// RecordTokenize is called for every analyzed field value.
	RecordTokenize(field string, terms int, ok bool)

	// RecordQuery is called after each search. filter names the filter
	// type, hits is the number of returned documents.
	RecordQuery(filter string, hits int, duration time.Duration, err error)
}

// Noop is a no-op implementation of Collector.
type Noop struct{}

func (Noop) RecordIndex(int, int, time.Duration, error)    {}
func (Noop) RecordTokenize(string, int, bool)              {}
func (Noop) RecordQuery(string, int, time.Duration, error) {}

// Basic provides simple in-memory metrics collection.
type Basic struct {
	IndexCount      atomic.Int64
	IndexDocs       atomic.Int64
	IndexErrors     atomic.Int64
	IndexTotalNanos atomic.Int64
	SkippedValues   atomic.Int64
	Terms           atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryHits       atomic.Int64
	QueryTotalNanos atomic.Int64
}

// RecordIndex implements Collector.
func (b *Basic) RecordIndex(docs, skipped int, duration time.Duration, err error) {
	b.IndexCount.Add(1)
	b.IndexDocs.Add(int64(docs))
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
	}
}

// RecordTokenize implements Collector.
func (b *Basic) RecordTokenize(_ string, terms int, ok bool) {
	if !ok {
		b.SkippedValues.Add(1)
		return
	}
	b.Terms.Add(int64(terms))
}

// RecordQuery implements Collector.
func (b *Basic) RecordQuery(_ string, hits int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryHits.Add(int64(hits))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// Stats returns a snapshot of current metrics.
func (b *Basic) Stats() Stats {
	return Stats{
		IndexCount:    b.IndexCount.Load(),
		IndexDocs:     b.IndexDocs.Load(),
		IndexErrors:   b.IndexErrors.Load(),
		IndexAvgNanos: avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
		SkippedValues: b.SkippedValues.Load(),
		Terms:         b.Terms.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryHits:     b.QueryHits.Load(),
		QueryAvgNanos: avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// Stats is a snapshot of Basic state.
type Stats struct {
	IndexCount    int64
	IndexDocs     int64
	IndexErrors   int64
	IndexAvgNanos int64
	SkippedValues int64
	Terms         int64
	QueryCount    int64
	QueryErrors   int64
	QueryHits     int64
	QueryAvgNanos int64
}
