package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"github.com/golang/geo/s2"

	"github.com/hupe1980/geosearch/shape"
)

// LatLng is a coordinate pair in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Point returns the coordinate as a unit-sphere point.
func (ll LatLng) Point() s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(ll.Lat, ll.Lng))
}

// GeoPoint returns the coordinate as a [lon, lat] JSON array.
func (ll LatLng) GeoPoint() string {
	return "[" + ftoa(ll.Lng) + ", " + ftoa(ll.Lat) + "]"
}

// GeoJSON returns the coordinate as a GeoJSON Point.
func (ll LatLng) GeoJSON() string {
	return `{"type": "Point", "coordinates": ` + ll.GeoPoint() + `}`
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// SearchResult represents a search result.
type SearchResult struct {
	ID       uint32
	Distance float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates points uniformly distributed in degrees over the
// rectangle [minLat, maxLat) x [minLng, maxLng).
func (r *RNG) UniformPoints(num int, minLat, minLng, maxLat, maxLng float64) []LatLng {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]LatLng, num)
	for i := range pts {
		pts[i] = LatLng{
			Lat: minLat + r.rand.Float64()*(maxLat-minLat),
			Lng: minLng + r.rand.Float64()*(maxLng-minLng),
		}
	}
	return pts
}

// ClusteredPoints generates points around a center, normally distributed
// with a standard deviation of spread meters.
func (r *RNG) ClusteredPoints(num int, center LatLng, spread float64) []LatLng {
	r.mu.Lock()
	defer r.mu.Unlock()

	latScale := spread / (shape.EarthRadiusMeters * math.Pi / 180)
	lngScale := latScale / math.Max(math.Cos(center.Lat*math.Pi/180), 1e-6)

	pts := make([]LatLng, num)
	for i := range pts {
		pts[i] = LatLng{
			Lat: clampLat(center.Lat + r.rand.NormFloat64()*latScale),
			Lng: wrapLng(center.Lng + r.rand.NormFloat64()*lngScale),
		}
	}
	return pts
}

// HotspotPoints generates points around the given hotspots. Hotspots are
// chosen with a Zipfian distribution of skew s, so a few of them hold most
// of the points.
func (r *RNG) HotspotPoints(num int, hotspots []LatLng, spread, s float64) []LatLng {
	if len(hotspots) == 0 {
		return nil
	}
	pts := make([]LatLng, 0, num)
	for range num {
		h := hotspots[r.Zipf(len(hotspots), s)]
		pts = append(pts, r.ClusteredPoints(1, h, spread)...)
	}
	return pts
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// PointDocs renders one JSON document per point, with the point stored
// under field as a [lon, lat] array.
func PointDocs(field string, pts []LatLng) [][]byte {
	docs := make([][]byte, len(pts))
	for i, p := range pts {
		docs[i] = []byte(fmt.Sprintf(`{%q: %s}`, field, p.GeoPoint()))
	}
	return docs
}

// BruteForceWithin returns the ids of all points within meters of origin,
// in ascending id order.
func BruteForceWithin(pts []LatLng, origin s2.Point, meters float64) []uint32 {
	var ids []uint32
	for i, p := range pts {
		if shape.Distance(origin, p.Point()) <= meters {
			ids = append(ids, uint32(i))
		}
	}
	return ids
}

// BruteForceNearest performs exact nearest-neighbor search for ground truth.
func BruteForceNearest(pts []LatLng, origin s2.Point, k int) []SearchResult {
	results := make([]SearchResult, len(pts))
	for i, p := range pts {
		results[i] = SearchResult{ID: uint32(i), Distance: shape.Distance(origin, p.Point())}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// ComputeRecall computes recall@k by comparing results against ground truth.
func ComputeRecall(groundTruth, approximate []SearchResult) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[uint32]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].ID] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.ID]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func wrapLng(lng float64) float64 {
	for lng >= 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
