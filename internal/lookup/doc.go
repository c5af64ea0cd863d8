// Package lookup provides an ordered collection of unique elements with
// constant-time key to position lookup.
//
// An [Array] keeps insertion order like a slice and indexes each element by
// a key derived from it, so membership tests and [Array.LookupIndex] do not
// scan. Removing an element shifts the later ones and renumbers their
// positions, which keeps the index consistent with the order.
//
// Viewport stages use it to hold their intermediate video lists keyed by
// filename, so a deleted video can be dropped from every cached stage
// output without recomputing the pipeline.
package lookup
