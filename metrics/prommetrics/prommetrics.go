// Package prommetrics exports index metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/geosearch/metrics"
)

var _ metrics.Collector = (*Collector)(nil)

// Collector implements metrics.Collector with Prometheus instruments.
type Collector struct {
	opLatency *prometheus.HistogramVec
	docs      prometheus.Counter
	values    *prometheus.CounterVec
	terms     *prometheus.CounterVec
	hits      *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index and query operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		docs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexed_documents_total",
			Help:      "Total documents submitted for indexing",
		}),
		values: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyzed_values_total",
			Help:      "Total geo field values analyzed",
		}, []string{"field", "status"}),
		terms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emitted_terms_total",
			Help:      "Total index terms emitted by geo analyzers",
		}, []string{"field"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_hits_total",
			Help:      "Total documents returned by geo queries",
		}, []string{"filter"}),
	}

	for _, col := range []prometheus.Collector{c.opLatency, c.docs, c.values, c.terms, c.hits} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordIndex implements metrics.Collector.
func (c *Collector) RecordIndex(docs, _ int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("index", status(err)).Observe(d.Seconds())
	c.docs.Add(float64(docs))
}

// RecordTokenize implements metrics.Collector.
func (c *Collector) RecordTokenize(field string, terms int, ok bool) {
	if !ok {
		c.values.WithLabelValues(field, "skipped").Inc()
		return
	}
	c.values.WithLabelValues(field, "indexed").Inc()
	c.terms.WithLabelValues(field).Add(float64(terms))
}

// RecordQuery implements metrics.Collector.
func (c *Collector) RecordQuery(filter string, hits int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("query", status(err)).Observe(d.Seconds())
	c.hits.WithLabelValues(filter).Add(float64(hits))
}
