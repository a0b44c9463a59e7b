// Package clustering implements the numerical core of recovery phenotyping:
// z-score normalization, Euclidean distance, K-means++ seeding, Lloyd's
// iteration and silhouette scoring.
//
// All functions operate on row-per-point matrices of float64 in a fixed
// feature order and never touch global randomness; callers pass a seeded
// *rand.Rand so that runs are reproducible.
package clustering
