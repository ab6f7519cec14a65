package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/geosearch/codec"
	"github.com/hupe1980/geosearch/s2terms"
	"github.com/hupe1980/geosearch/shape"
)

// ErrInvalidValue is returned when a field value cannot be indexed by the
// analyzer's kind or mode.
var ErrInvalidValue = errors.New("invalid geo value")

// Analyzer tokenizes one geo field value at a time.
type Analyzer struct {
	s       settings
	latPath string
	lonPath string
	indexer *s2terms.Indexer
	logger  *slog.Logger
	enc     codec.Codec

	terms  []string
	pos    int
	stored []byte
	err    error
}

// NewShapeAnalyzer returns a geojson analyzer.
func NewShapeAnalyzer(mode Mode, opts IndexOptions) (*Analyzer, error) {
	if mode > ModePoint {
		return nil, &ConfigError{Kind: KindGeoJSON, Err: fmt.Errorf("%w: %v", ErrUnknownMode, mode)}
	}
	if err := opts.Validate(); err != nil {
		return nil, &ConfigError{Kind: KindGeoJSON, Err: err}
	}
	a := &Analyzer{}
	a.init(settings{kind: KindGeoJSON, mode: mode, opts: opts})
	return a, nil
}

// NewPointAnalyzer returns a geopoint analyzer. With empty paths the value
// itself must be a [lon, lat] array.
func NewPointAnalyzer(opts IndexOptions, latitude, longitude []string) (*Analyzer, error) {
	if err := validatePaths(latitude, longitude); err != nil {
		return nil, &ConfigError{Kind: KindGeoPoint, Err: err}
	}
	if err := opts.Validate(); err != nil {
		return nil, &ConfigError{Kind: KindGeoPoint, Err: err}
	}
	a := &Analyzer{}
	a.init(settings{kind: KindGeoPoint, mode: ModePoint, opts: opts, latitude: latitude, longitude: longitude})
	return a, nil
}

func (a *Analyzer) init(s settings) {
	a.s = s
	if len(s.latitude) > 0 {
		a.latPath = jsonPath(s.latitude)
		a.lonPath = jsonPath(s.longitude)
	}
	a.indexer = s2terms.NewIndexer(s.opts.TermOptions(a.PointsOnly()))
	a.pos = -1
	if a.enc == nil {
		a.enc = codec.Default
	}
}

// Clone returns an analyzer with the same configuration and fresh state.
func (a *Analyzer) Clone() *Analyzer {
	c := &Analyzer{logger: a.logger, enc: a.enc}
	c.init(a.s)
	return c
}

// Kind returns the analyzer type.
func (a *Analyzer) Kind() Kind { return a.s.kind }

// Mode returns the reduction mode. Geopoint analyzers report ModePoint.
func (a *Analyzer) Mode() Mode { return a.s.mode }

// Options returns the index options.
func (a *Analyzer) Options() IndexOptions { return a.s.opts }

// PointsOnly reports whether every value indexed by a reduces to one point.
func (a *Analyzer) PointsOnly() bool {
	return a.s.kind == KindGeoPoint || a.s.mode != ModeShape
}

// PrepareQuery writes the term options that filters over this analyzer's
// field must use.
func (a *Analyzer) PrepareQuery(o *s2terms.Options) {
	*o = a.s.opts.TermOptions(a.PointsOnly())
}

// Config returns the canonical configuration.
func (a *Analyzer) Config() []byte {
	b, _ := a.s.marshal()
	return b
}

// Reset tokenizes raw and reports whether it produced terms. A false result
// skips the value; Err returns the reason.
func (a *Analyzer) Reset(raw []byte) bool {
	a.terms = a.terms[:0]
	a.pos = -1
	a.stored = nil
	a.err = nil

	var err error
	if a.s.kind == KindGeoPoint {
		err = a.resetPoint(raw)
	} else {
		err = a.resetShape(raw)
	}
	if err != nil {
		a.terms = a.terms[:0]
		a.stored = nil
		a.err = err
		if a.logger != nil {
			a.logger.Debug("geo analyzer rejected value", "kind", string(a.s.kind), "error", err)
		}
		return false
	}
	return true
}

func (a *Analyzer) resetShape(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	s, err := shape.Parse(raw)
	if err != nil {
		return err
	}
	switch a.s.mode {
	case ModePoint:
		p, ok := s.Point()
		if !ok {
			return fmt.Errorf("%w: %s is not a point", ErrInvalidValue, s.Kind())
		}
		a.terms = a.indexer.IndexTermsForPoint(a.terms, p)
	case ModeCentroid:
		a.terms = a.indexer.IndexTermsForPoint(a.terms, s.Centroid())
	default:
		if p, ok := s.Point(); ok {
			a.terms = a.indexer.IndexTermsForPoint(a.terms, p)
		} else {
			a.terms = a.indexer.IndexTermsForRegion(a.terms, s.Region())
		}
	}
	a.stored = append([]byte(nil), raw...)
	return nil
}

func (a *Analyzer) resetPoint(raw []byte) error {
	var lat, lon float64
	if a.latPath == "" {
		var coords []float64
		if err := a.enc.Unmarshal(bytes.TrimSpace(raw), &coords); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		if len(coords) < 2 {
			return fmt.Errorf("%w: expected [lon, lat], got %d values", ErrInvalidValue, len(coords))
		}
		lon, lat = coords[0], coords[1]
	} else {
		if !gjson.ValidBytes(raw) {
			return fmt.Errorf("%w: malformed JSON", ErrInvalidValue)
		}
		doc := gjson.ParseBytes(raw)
		if !doc.IsObject() {
			return fmt.Errorf("%w: expected an object", ErrInvalidValue)
		}
		latV, lonV := doc.Get(a.latPath), doc.Get(a.lonPath)
		if latV.Type != gjson.Number || lonV.Type != gjson.Number {
			return fmt.Errorf("%w: latitude/longitude must be numbers", ErrInvalidValue)
		}
		lat, lon = latV.Float(), lonV.Float()
	}
	s, err := shape.NewPoint(lat, lon)
	if err != nil {
		return err
	}
	p, _ := s.Point()
	a.terms = a.indexer.IndexTermsForPoint(a.terms, p)
	a.stored, err = a.enc.Marshal([2]float64{lon, lat})
	return err
}

// Next advances to the next term.
func (a *Analyzer) Next() bool {
	if a.pos+1 >= len(a.terms) {
		a.pos = len(a.terms)
		return false
	}
	a.pos++
	return true
}

// Term returns the current term.
func (a *Analyzer) Term() string { return a.terms[a.pos] }

// Value returns the current term as bytes.
func (a *Analyzer) Value() []byte { return []byte(a.terms[a.pos]) }

// Increment is the position increment of every term. Geo terms carry no
// positions.
func (a *Analyzer) Increment() uint32 { return 1 }

// Stored returns the bytes to keep in the stored column for the last
// successful Reset: the trimmed GeoJSON for geojson analyzers, [lon, lat]
// for geopoint analyzers.
func (a *Analyzer) Stored() []byte { return a.stored }

// Err returns why the last Reset failed.
func (a *Analyzer) Err() error { return a.err }
