package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/geosearch/codec"
)

// Kind names an analyzer type.
type Kind string

const (
	// KindGeoJSON indexes GeoJSON geometry.
	KindGeoJSON Kind = "geojson"
	// KindGeoPoint indexes latitude/longitude pairs.
	KindGeoPoint Kind = "geopoint"
)

// Mode selects how a geojson analyzer reduces a geometry.
type Mode uint8

const (
	// ModeShape indexes the full region; points use point terms.
	ModeShape Mode = iota
	// ModeCentroid indexes the centroid of any geometry.
	ModeCentroid
	// ModePoint accepts points only.
	ModePoint
)

func (m Mode) String() string {
	switch m {
	case ModeShape:
		return "shape"
	case ModeCentroid:
		return "centroid"
	case ModePoint:
		return "point"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name. Names are case-sensitive.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "shape":
		return ModeShape, nil
	case "centroid":
		return ModeCentroid, nil
	case "point":
		return ModePoint, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

var (
	// ErrInvalidConfig is returned for malformed analyzer configuration.
	ErrInvalidConfig = errors.New("invalid analyzer config")
	// ErrUnknownMode is returned for an unknown geojson mode.
	ErrUnknownMode = errors.New("unknown analyzer mode")
	// ErrUnknownKind is returned for an unknown analyzer kind.
	ErrUnknownKind = errors.New("unknown analyzer kind")
)

// ConfigError reports a configuration that could not produce an analyzer.
type ConfigError struct {
	Kind Kind
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s analyzer: %v", e.Kind, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type optionsDoc struct {
	MaxCells *int `json:"maxCells,omitempty"`
	MinLevel *int `json:"minLevel,omitempty"`
	MaxLevel *int `json:"maxLevel,omitempty"`
}

type shapeDoc struct {
	Mode    *string     `json:"mode,omitempty"`
	Type    *string     `json:"type,omitempty"` // legacy name of mode
	Options *optionsDoc `json:"options,omitempty"`
}

type pointDoc struct {
	Latitude  []string    `json:"latitude,omitempty"`
	Longitude []string    `json:"longitude,omitempty"`
	Options   *optionsDoc `json:"options,omitempty"`
}

// settings is a validated configuration.
type settings struct {
	kind      Kind
	mode      Mode
	opts      IndexOptions
	latitude  []string
	longitude []string
}

func (d *optionsDoc) resolve() (IndexOptions, error) {
	o := DefaultIndexOptions()
	if d == nil {
		return o, nil
	}
	if d.MaxCells != nil {
		o.MaxCells = *d.MaxCells
	}
	if d.MinLevel != nil {
		o.MinLevel = *d.MinLevel
	}
	if d.MaxLevel != nil {
		o.MaxLevel = *d.MaxLevel
	}
	if err := o.Validate(); err != nil {
		return IndexOptions{}, err
	}
	return o, nil
}

func docOptions(o IndexOptions) *optionsDoc {
	return &optionsDoc{MaxCells: &o.MaxCells, MinLevel: &o.MinLevel, MaxLevel: &o.MaxLevel}
}

func decode(c codec.Codec, config []byte, v any) error {
	config = bytes.TrimSpace(config)
	if len(config) == 0 {
		return nil
	}
	if config[0] != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidConfig)
	}
	if err := c.Unmarshal(config, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func parseSettings(c codec.Codec, kind Kind, config []byte) (settings, error) {
	switch kind {
	case KindGeoJSON:
		var doc shapeDoc
		if err := decode(c, config, &doc); err != nil {
			return settings{}, err
		}
		mode := ModeShape
		name := doc.Mode
		if name == nil {
			name = doc.Type
		}
		if name != nil {
			m, err := ParseMode(*name)
			if err != nil {
				return settings{}, err
			}
			mode = m
		}
		opts, err := doc.Options.resolve()
		if err != nil {
			return settings{}, err
		}
		return settings{kind: kind, mode: mode, opts: opts}, nil
	case KindGeoPoint:
		var doc pointDoc
		if err := decode(c, config, &doc); err != nil {
			return settings{}, err
		}
		if err := validatePaths(doc.Latitude, doc.Longitude); err != nil {
			return settings{}, err
		}
		opts, err := doc.Options.resolve()
		if err != nil {
			return settings{}, err
		}
		return settings{kind: kind, mode: ModePoint, opts: opts, latitude: doc.Latitude, longitude: doc.Longitude}, nil
	default:
		return settings{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func validatePaths(latitude, longitude []string) error {
	if (len(latitude) == 0) != (len(longitude) == 0) {
		return fmt.Errorf("%w: latitude and longitude paths must both be set or both be empty", ErrInvalidConfig)
	}
	for _, p := range append(append([]string(nil), latitude...), longitude...) {
		if p == "" {
			return fmt.Errorf("%w: empty path component", ErrInvalidConfig)
		}
	}
	return nil
}

func (s settings) marshal() ([]byte, error) {
	switch s.kind {
	case KindGeoJSON:
		mode := s.mode.String()
		return codec.Default.Marshal(shapeDoc{Mode: &mode, Options: docOptions(s.opts)})
	default:
		return codec.Default.Marshal(pointDoc{Latitude: s.latitude, Longitude: s.longitude, Options: docOptions(s.opts)})
	}
}

// Make builds an analyzer from a JSON configuration document. An empty
// configuration selects the defaults.
func Make(kind Kind, config []byte, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{enc: codec.Default}
	for _, opt := range opts {
		opt(a)
	}
	s, err := parseSettings(a.enc, kind, config)
	if err != nil {
		err = &ConfigError{Kind: kind, Err: err}
		if a.logger != nil {
			a.logger.Warn("geo analyzer unavailable", "kind", string(kind), "error", err)
		}
		return nil, err
	}
	a.init(s)
	return a, nil
}

// Normalize validates a configuration and returns its canonical form.
// Normalize is idempotent.
func Normalize(kind Kind, config []byte) ([]byte, error) {
	s, err := parseSettings(codec.Default, kind, config)
	if err != nil {
		return nil, &ConfigError{Kind: kind, Err: err}
	}
	return s.marshal()
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for rejected configurations and values.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithCodec sets the codec that decodes the configuration and raw point
// values and encodes stored points. Canonical configurations always use
// codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.enc = c
		}
	}
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`,
)

// jsonPath joins path components into a gjson path.
func jsonPath(components []string) string {
	escaped := make([]string, len(components))
	for i, c := range components {
		escaped[i] = pathEscaper.Replace(c)
	}
	return strings.Join(escaped, ".")
}
