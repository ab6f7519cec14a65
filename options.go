package geosearch

import (
	"log/slog"

	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/metrics"
	"github.com/hupe1980/geosearch/segment"
)

type options struct {
	fields      []segment.FieldConfig
	logger      *Logger
	metrics     metrics.Collector
	compression segment.CompressionType
	workers     int
	shapeCache  int
	codec       string
}

// Option configures an Index.
type Option func(*options)

// WithField declares an indexed geo field. config is the analyzer's JSON
// configuration; an empty config selects the defaults of kind.
//
// Example:
//
//	idx, _ := geosearch.New(
//	    geosearch.WithField("location", analysis.KindGeoPoint, `{"latitude": ["lat"], "longitude": ["lon"]}`),
//	    geosearch.WithField("area", analysis.KindGeoJSON, `{"mode": "shape", "options": {"maxCells": 32}}`),
//	)
func WithField(name string, kind analysis.Kind, config string) Option {
	return func(o *options) {
		o.fields = append(o.fields, segment.FieldConfig{Name: name, Kind: kind, Config: []byte(config)})
	}
}

// WithMetrics configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with metrics.Basic:
//
//	m := &metrics.Basic{}
//	idx, _ := geosearch.New(geosearch.WithField("geo", analysis.KindGeoJSON, ""), geosearch.WithMetrics(m))
//	// ... use idx ...
//	stats := m.Stats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetrics(mc metrics.Collector) Option {
	return func(o *options) {
		if mc == nil {
			mc = metrics.Noop{}
		}
		o.metrics = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := geosearch.NewJSONLogger(slog.LevelInfo)
//	idx, _ := geosearch.New(geosearch.WithField("geo", analysis.KindGeoJSON, ""), geosearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCompression sets the compression of stored geometry. Defaults to LZ4.
func WithCompression(c segment.CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithWorkers limits the goroutines used by AddBatch. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithShapeCache caches up to capacity decoded geometries for exact
// verification. The cache is shared by every snapshot of the index.
// Disabled by default.
func WithShapeCache(capacity int) Option {
	return func(o *options) {
		o.shapeCache = capacity
	}
}

// WithCodec selects the JSON codec of field values by name: "go-json"
// (default) or "json".
func WithCodec(name string) Option {
	return func(o *options) {
		o.codec = name
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metrics:     metrics.Noop{},
		logger:      NoopLogger(),
		compression: segment.CompressionLZ4,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
