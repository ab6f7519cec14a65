// Command geoquery indexes a newline-delimited JSON file and runs one
// spatial query over it.
//
// Usage:
//
//	geoquery --data places.ndjson --field location --kind geopoint \
//	    --point 55.70892,37.607768 --max 300 --nearest --limit 5
//
//	geoquery --config geoquery.yaml --data areas.ndjson --field area \
//	    --type contains --shape @bbox.geojson
//
// Each hit is printed as a JSON line holding the document id, the score and
// the stored geometry.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/hupe1980/geosearch"
	"github.com/hupe1980/geosearch/metrics/prommetrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("geoquery", pflag.ContinueOnError)
	fs.String("config", "", "YAML configuration file")
	fs.String("data", "", "newline-delimited JSON documents (- for stdin)")
	fs.String("field", "location", "field to query")
	fs.String("kind", "geopoint", "analyzer kind when no fields are configured")
	fs.String("type", "intersects", "relation: intersects, contains, is_contained or nearby")
	fs.String("shape", "", "query GeoJSON, or @file to read it from a file")
	fs.String("point", "", "query point as lat,lng")
	fs.Float64("min", 0, "minimum distance in meters")
	fs.Float64("max", 0, "maximum distance in meters")
	fs.Bool("inclusive", true, "include the distance bounds")
	fs.Bool("nearest", false, "rank hits by distance, nearest first")
	fs.Int("limit", 0, "maximum number of hits (0 for all)")
	fs.Int("workers", 0, "indexing goroutines (0 for GOMAXPROCS)")
	fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address after the query")
	return fs
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	q, err := parseQuery(fs)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector, err := prommetrics.New(reg, cfg.Metrics.Namespace)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	idx, err := geosearch.New(append(cfg.Options(), geosearch.WithMetrics(collector))...)
	if err != nil {
		return err
	}

	data, _ := fs.GetString("data")
	if err := load(ctx, idx, data); err != nil {
		return err
	}

	if err := q.run(ctx, idx.Commit(ctx), stdout); err != nil {
		return err
	}

	if cfg.Metrics.Addr == "" {
		return nil
	}
	return serveMetrics(ctx, cfg.Metrics.Addr, reg)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Printf("serving metrics on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
