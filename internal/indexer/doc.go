// Package indexer maintains the inverted term index used to answer text and
// flag queries over the video library.
//
// The index maps every term to the set of video filenames carrying it, and
// keeps the reverse filename to terms mapping so single videos can be
// removed or updated without touching unrelated buckets.
//
// Besides the free-text terms of a video, every boolean flag is indexed as a
// synthetic "flag=true" or "flag=false" term. Flag queries are therefore
// ordinary AND term lookups; discarded videos are excluded unless a query
// asks for them explicitly.
//
// Search conditions:
//   - and: every query term must be present
//   - or: at least one query term must be present
//   - exact: every term present and the space-joined query terms appear
//     contiguously in the space-joined video terms
//   - id: a single integer term matched against the video ID
//
// The index serializes to an opaque msgpack blob (MarshalBinary) so the
// database can persist it and skip already-indexed videos on reload.
package indexer
