// Package store persists labeled reference samples in SQLite.
//
// Samples are grouped by dataset id and kept in insertion order, which is the
// order reference sets are rebuilt in. Nearest runs the same ranking as
// knn.Classify inside SQL through the vec_ssd scalar function, so
// engine.RegisterVectorFunctions must be called before connections are
// opened. Built reference sets can be persisted as binary snapshots.
package store
