package analysis

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geosearch/s2terms"
)

// ErrInvalidOptions is returned for index options outside their bounds.
var ErrInvalidOptions = errors.New("invalid index options")

// IndexOptions bounds the cell covering of indexed geometry.
type IndexOptions struct {
	MaxCells int
	MinLevel int
	MaxLevel int
}

// DefaultIndexOptions returns {MaxCells: 20, MinLevel: 4, MaxLevel: 23}.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		MaxCells: s2terms.DefaultMaxCells,
		MinLevel: s2terms.DefaultMinLevel,
		MaxLevel: s2terms.DefaultMaxLevel,
	}
}

// NewIndexOptions validates and returns index options.
func NewIndexOptions(maxCells, minLevel, maxLevel int) (IndexOptions, error) {
	o := IndexOptions{MaxCells: maxCells, MinLevel: minLevel, MaxLevel: maxLevel}
	if err := o.Validate(); err != nil {
		return IndexOptions{}, err
	}
	return o, nil
}

// Validate checks 0 <= MinLevel <= MaxLevel <= 30 and MaxCells > 0.
func (o IndexOptions) Validate() error {
	switch {
	case o.MaxCells <= 0:
		return fmt.Errorf("%w: maxCells must be positive, got %d", ErrInvalidOptions, o.MaxCells)
	case o.MinLevel < 0:
		return fmt.Errorf("%w: minLevel must not be negative, got %d", ErrInvalidOptions, o.MinLevel)
	case o.MaxLevel > s2terms.MaxCellLevel:
		return fmt.Errorf("%w: maxLevel must not exceed %d, got %d", ErrInvalidOptions, s2terms.MaxCellLevel, o.MaxLevel)
	case o.MinLevel > o.MaxLevel:
		return fmt.Errorf("%w: minLevel %d exceeds maxLevel %d", ErrInvalidOptions, o.MinLevel, o.MaxLevel)
	}
	return nil
}

// TermOptions returns the term generation options for these bounds.
// pointsOnly is decided by the owner: it is set when every indexed value of
// the field is a single point.
func (o IndexOptions) TermOptions(pointsOnly bool) s2terms.Options {
	t := s2terms.DefaultOptions()
	t.MaxCells = o.MaxCells
	t.MinLevel = o.MinLevel
	t.MaxLevel = o.MaxLevel
	t.PointsOnly = pointsOnly
	return t
}
