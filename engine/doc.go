// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections and registering the vector
// distance SQL scalar functions. It keeps a thin surface so the store and
// tests share the same driver instance.
package engine
