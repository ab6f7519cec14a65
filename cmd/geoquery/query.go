package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/hupe1980/geosearch"
	"github.com/hupe1980/geosearch/search"
	"github.com/hupe1980/geosearch/shape"
)

const (
	batchSize     = 1024
	maxLineLength = 16 << 20
)

type query struct {
	field    string
	typ      search.FilterType
	shape    *shape.Shape
	distance *search.Range
	nearest  bool
	limit    int
}

func parseQuery(fs *pflag.FlagSet) (*query, error) {
	q := &query{}
	q.field, _ = fs.GetString("field")
	q.nearest, _ = fs.GetBool("nearest")
	q.limit, _ = fs.GetInt("limit")

	typ, _ := fs.GetString("type")
	t, err := search.ParseFilterType(typ)
	if err != nil {
		return nil, err
	}
	q.typ = t

	point, _ := fs.GetString("point")
	raw, _ := fs.GetString("shape")
	switch {
	case point != "" && raw != "":
		return nil, fmt.Errorf("%w: --point and --shape are exclusive", geosearch.ErrInvalidQuery)
	case point != "":
		q.shape, err = parsePoint(point)
	case raw != "":
		q.shape, err = parseShape(raw)
	default:
		return nil, fmt.Errorf("%w: one of --point or --shape is required", geosearch.ErrInvalidQuery)
	}
	if err != nil {
		return nil, err
	}

	if fs.Changed("min") || fs.Changed("max") || q.nearest {
		inclusive, _ := fs.GetBool("inclusive")
		bound := search.Exclusive
		if inclusive {
			bound = search.Inclusive
		}
		r := search.Range{}
		if fs.Changed("min") {
			r.Min, _ = fs.GetFloat64("min")
			r.MinBound = bound
		}
		if fs.Changed("max") {
			r.Max, _ = fs.GetFloat64("max")
			r.MaxBound = bound
		}
		q.distance = &r
	}
	return q, nil
}

func parsePoint(s string) (*shape.Shape, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("%w: point must be lat,lng, got %q", geosearch.ErrInvalidQuery, s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude: %w", geosearch.ErrInvalidQuery, err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude: %w", geosearch.ErrInvalidQuery, err)
	}
	return shape.NewPoint(la, ln)
}

func parseShape(s string) (*shape.Shape, error) {
	data := []byte(s)
	if path, ok := strings.CutPrefix(s, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return shape.Parse(data)
}

func (q *query) filter(snap *geosearch.Snapshot) (geosearch.Filter, error) {
	if q.distance != nil {
		f, err := snap.DistanceFilter(q.field, search.OriginFromShape(q.shape), *q.distance)
		if err != nil {
			return nil, err
		}
		if q.nearest {
			f.SetScorer(search.RawDistance{})
		}
		return f, nil
	}
	return snap.GeoFilter(q.field, q.typ, q.shape)
}

type hit struct {
	Doc      uint32            `json:"doc"`
	Score    float32           `json:"score"`
	Geometry gojson.RawMessage `json:"geometry,omitempty"`
}

func (q *query) run(ctx context.Context, snap *geosearch.Snapshot, w io.Writer) error {
	f, err := q.filter(snap)
	if err != nil {
		return err
	}

	sb := snap.Search(f).Limit(q.limit)
	if q.nearest {
		k := q.limit
		if k <= 0 {
			k = int(snap.DocCount())
		}
		sb = sb.TopK(k, search.Ascending)
	}
	hits, err := sb.Execute(ctx)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	enc := gojson.NewEncoder(bw)
	for _, h := range hits {
		raw, err := snap.Stored(q.field, h.Doc)
		if err != nil {
			return err
		}
		if err := enc.Encode(hit{Doc: h.Doc, Score: h.Score, Geometry: raw}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// load indexes newline-delimited JSON documents in batches. Blank lines
// are skipped; document ids follow line order otherwise.
func load(ctx context.Context, idx *geosearch.Index, path string) error {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineLength)

	batch := make([][]byte, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := idx.AddBatch(ctx, batch)
		batch = batch[:0]
		return err
	}

	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		batch = append(batch, bytes.Clone(b))
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return flush()
}
