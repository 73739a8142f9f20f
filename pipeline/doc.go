// Package pipeline provides a depth-parameterized feature extractor. A
// Pipeline is an ordered list of stages; Truncate selects how many leading
// stages run, so a "truncated" network is the same pipeline with a smaller
// depth rather than a separate model type.
package pipeline
