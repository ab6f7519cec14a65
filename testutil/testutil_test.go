package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	pts := rng.UniformPoints(100, 55.5, 37.3, 55.9, 37.9)

	require.Len(t, pts, 100)
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.Lat, 55.5)
		assert.Less(t, p.Lat, 55.9)
		assert.GreaterOrEqual(t, p.Lng, 37.3)
		assert.Less(t, p.Lng, 37.9)
	}
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)
	center := LatLng{Lat: 55.7, Lng: 37.6}

	pts := rng.ClusteredPoints(200, center, 100)

	require.Len(t, pts, 200)
	within := BruteForceWithin(pts, center.Point(), 500)
	assert.Greater(t, len(within), 190)
}

func TestHotspotPoints(t *testing.T) {
	rng := NewRNG(4711)
	hot := []LatLng{{Lat: 55.7, Lng: 37.6}, {Lat: 48.85, Lng: 2.35}}

	pts := rng.HotspotPoints(100, hot, 50, 1.5)

	require.Len(t, pts, 100)
	near := BruteForceWithin(pts, hot[0].Point(), 1000)
	assert.Greater(t, len(near), 50)
	assert.Nil(t, rng.HotspotPoints(10, nil, 50, 1))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.UniformPoints(1, -90, -180, 90, 180)
	rng.Reset()
	p2 := rng.UniformPoints(1, -90, -180, 90, 180)

	assert.Equal(t, p1, p2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestLatLng_Encoding(t *testing.T) {
	ll := LatLng{Lat: 55.709, Lng: 37.608}
	assert.Equal(t, "[37.608, 55.709]", ll.GeoPoint())
	assert.Equal(t, `{"type": "Point", "coordinates": [37.608, 55.709]}`, ll.GeoJSON())
	assert.Equal(t, []byte(`{"loc": [37.608, 55.709]}`), PointDocs("loc", []LatLng{ll})[0])
}

func TestBruteForceNearest(t *testing.T) {
	pts := []LatLng{{Lat: 1, Lng: 0}, {Lat: 0.1, Lng: 0}, {Lat: 0.5, Lng: 0}}
	origin := LatLng{}.Point()

	got := BruteForceNearest(pts, origin, 2)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].ID)
	assert.Equal(t, uint32(2), got[1].ID)
	assert.InDelta(t, 11119.5, got[0].Distance, 1)
}

func TestComputeRecall(t *testing.T) {
	truth := []SearchResult{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall(truth, nil))
	assert.Equal(t, 0.5, ComputeRecall(truth, []SearchResult{{ID: 1}, {ID: 9}, {ID: 3}, {ID: 8}}))
}
