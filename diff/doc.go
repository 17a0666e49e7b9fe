// Package diff computes the delta between two snapshots.
//
// The result is a three-way grouping: entities present only in the modified
// snapshot (added), only in the original (removed), and present in both with
// differing properties (changed). Output is grouped by category and human
// name so it reads as document structure, not as identity-key plumbing.
package diff
