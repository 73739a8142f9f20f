// Package qdrant mirrors a reference set into a Qdrant collection and ranks
// queries against it over gRPC. Rankings use the same order contract as
// knn.Classify: squared distances, ties broken by reference index.
package qdrant
