package search

// DistanceScorer scores a match from its exact distance in meters to the
// query origin.
type DistanceScorer interface {
	Score(meters float64) float32
}

// DistanceScorerFunc adapts a function to DistanceScorer.
type DistanceScorerFunc func(meters float64) float32

// Score implements DistanceScorer.
func (f DistanceScorerFunc) Score(meters float64) float32 { return f(meters) }

// RawDistance scores a match with its distance. Rank ascending to get the
// nearest documents first.
type RawDistance struct{}

// Score implements DistanceScorer.
func (RawDistance) Score(meters float64) float32 { return float32(meters) }

// InverseDistance scores 1 at the origin, decaying to 0.5 at Scale meters.
// A zero Scale is treated as one meter.
type InverseDistance struct {
	Scale float64
}

// Score implements DistanceScorer.
func (s InverseDistance) Score(meters float64) float32 {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	return float32(1 / (1 + meters/scale))
}
