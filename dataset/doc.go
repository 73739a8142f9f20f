// Package dataset loads labeled feature records for the classifier: the
// features/categories CSV pair, JSON record files and directories of
// per-sample files whose name prefix is the label. It also provides the
// category code table and a restartable batch iterator.
package dataset
