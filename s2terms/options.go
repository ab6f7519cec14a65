package s2terms

import (
	"errors"
	"fmt"
)

const (
	// MaxCellLevel is the deepest S2 cell level.
	MaxCellLevel = 30

	// DefaultMaxCells is the default soft limit of cells per covering.
	DefaultMaxCells = 20
	// DefaultMinLevel is the default coarsest cell level.
	DefaultMinLevel = 4
	// DefaultMaxLevel is the default finest cell level.
	DefaultMaxLevel = 23

	// Marker prefixes covering terms.
	Marker byte = '$'
)

// ErrInvalidOptions is returned when term options violate their bounds.
var ErrInvalidOptions = errors.New("invalid term options")

// Options configures term generation.
//
// LevelMod is always 1 and Marker is always '$' for options produced by this
// package; both are kept as fields so that equality checks cover them.
type Options struct {
	MinLevel int
	MaxLevel int
	LevelMod int
	MaxCells int
	Marker   byte

	// PointsOnly is set when every indexed value of a field is a single point.
	PointsOnly bool

	// OptimizeForSpace trades query terms for fewer index terms.
	OptimizeForSpace bool
}

// DefaultOptions returns options with the default level bounds.
func DefaultOptions() Options {
	return Options{
		MinLevel: DefaultMinLevel,
		MaxLevel: DefaultMaxLevel,
		LevelMod: 1,
		MaxCells: DefaultMaxCells,
		Marker:   Marker,
	}
}

// Validate checks the options bounds.
func (o Options) Validate() error {
	switch {
	case o.MaxCells <= 0:
		return fmt.Errorf("%w: maxCells %d must be positive", ErrInvalidOptions, o.MaxCells)
	case o.MinLevel < 0:
		return fmt.Errorf("%w: minLevel %d must not be negative", ErrInvalidOptions, o.MinLevel)
	case o.MaxLevel > MaxCellLevel:
		return fmt.Errorf("%w: maxLevel %d exceeds %d", ErrInvalidOptions, o.MaxLevel, MaxCellLevel)
	case o.MinLevel > o.MaxLevel:
		return fmt.Errorf("%w: minLevel %d exceeds maxLevel %d", ErrInvalidOptions, o.MinLevel, o.MaxLevel)
	case o.LevelMod < 1 || o.LevelMod > 3:
		return fmt.Errorf("%w: levelMod %d out of range [1,3]", ErrInvalidOptions, o.LevelMod)
	case o.Marker == 0:
		return fmt.Errorf("%w: marker must be set", ErrInvalidOptions)
	}
	return nil
}

// TrueMaxLevel is the finest level reachable from MinLevel in LevelMod steps.
func (o Options) TrueMaxLevel() int {
	if o.LevelMod <= 1 {
		return o.MaxLevel
	}
	return o.MaxLevel - (o.MaxLevel-o.MinLevel)%o.LevelMod
}
