// Package knn implements a nearest-neighbour embedding classifier. A
// ReferenceSet is built once from labeled embeddings; queries are ranked
// against every reference sample by distance (sum of squared differences by
// default) and the label of the closest sample is the prediction. Ties keep
// reference-set order. The package also produces an intra-class distance
// report and supports a compact binary snapshot format for persistence.
//
// Every operation is a pure function of its inputs: a ReferenceSet is
// read-only after Build and can be shared across goroutines.
package knn
