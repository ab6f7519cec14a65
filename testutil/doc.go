// Package testutil provides testing utilities for geosearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random coordinates, computing exact
// distance results, and verifying search recall.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, 55.5, 37.3, 55.9, 37.9)
//	pts = rng.ClusteredPoints(1000, testutil.LatLng{Lat: 55.7, Lng: 37.6}, 500)
//
// # Exact Search (Ground Truth)
//
//	ids := testutil.BruteForceWithin(pts, origin, 1000)
//	nearest := testutil.BruteForceNearest(pts, origin, 10)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(nearest, results)
package testutil
