// Package diff computes the unified diff of two texts as a stream of hunk
// events, ready to be written out by the format package. Each hunk carries
// a configurable number of context lines, placed the way GNU diff places
// them.
//
// The code in this package builds on top of https://github.com/andreyvit/diff,
// which generates line diffs (with unlimited context lines) on top of the word
// diffs produced by the diffmatchpatch package
// (https://github.com/sergi/go-diff). A limitation inherited from it is that
// it's not smart about reordered lines.
package diff
