package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/geosearch"
	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/codec"
	"github.com/hupe1980/geosearch/segment"
)

// Config holds the index configuration of a geoquery run.
type Config struct {
	Fields      []FieldConfig `mapstructure:"fields"`
	Compression string        `mapstructure:"compression"`
	Workers     int           `mapstructure:"workers"`
	ShapeCache  int           `mapstructure:"shape_cache"`
	Codec       string        `mapstructure:"codec"`
	Log         LogConfig     `mapstructure:"log"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// FieldConfig declares one indexed field. Config is the analyzer's JSON
// configuration.
type FieldConfig struct {
	Name   string `mapstructure:"name"`
	Kind   string `mapstructure:"kind"`
	Config string `mapstructure:"config"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Addr      string `mapstructure:"addr"`
}

// loadConfig reads configuration from the file named by --config, the
// environment and the flag set, in increasing precedence.
func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("compression", "lz4")
	v.SetDefault("workers", 0)
	v.SetDefault("shape_cache", 0)
	v.SetDefault("codec", "go-json")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.namespace", "geosearch")

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// GEOQUERY_LOG_LEVEL → log.level
	v.SetEnvPrefix("GEOQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"metrics.addr": "metrics-addr",
		"workers":      "workers",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Fields) == 0 {
		field, _ := fs.GetString("field")
		kind, _ := fs.GetString("kind")
		cfg.Fields = []FieldConfig{{Name: field, Kind: kind}}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	for i, f := range c.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("fields[%d].name is required", i))
		}
		switch analysis.Kind(f.Kind) {
		case analysis.KindGeoJSON, analysis.KindGeoPoint:
		default:
			errs = append(errs, fmt.Sprintf("fields[%d].kind must be geojson or geopoint, got %q", i, f.Kind))
		}
	}
	if _, err := segment.ParseCompression(c.Compression); err != nil {
		errs = append(errs, fmt.Sprintf("compression: %v", err))
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		errs = append(errs, fmt.Sprintf("codec must be go-json or json, got %q", c.Codec))
	}
	if c.ShapeCache < 0 {
		errs = append(errs, fmt.Sprintf("shape_cache must not be negative, got %d", c.ShapeCache))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", geosearch.ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}

// Options translates the configuration into index options.
func (c *Config) Options() []geosearch.Option {
	level, _ := parseLevel(c.Log.Level)
	logger := geosearch.NewTextLogger(level)
	if c.Log.Format == "json" {
		logger = geosearch.NewJSONLogger(level)
	}
	compression, _ := segment.ParseCompression(c.Compression)

	opts := []geosearch.Option{
		geosearch.WithLogger(logger),
		geosearch.WithCompression(compression),
		geosearch.WithWorkers(c.Workers),
		geosearch.WithShapeCache(c.ShapeCache),
		geosearch.WithCodec(c.Codec),
	}
	for _, f := range c.Fields {
		opts = append(opts, geosearch.WithField(f.Name, analysis.Kind(f.Kind), f.Config))
	}
	return opts
}

var errLogLevel = errors.New("unknown log level")

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w %q", errLogLevel, s)
	}
	return level, nil
}
