// Package video defines the video record shared by the database, the term
// indexer and the viewport pipeline.
//
// A Video is identified by its Filename (the identity key) and carries a
// unique integer ID, boolean flags, built-in metadata fields, user property
// values and the free-text terms derived from its metadata.
//
// Unreadable videos only carry the fields that can be known without probing
// the file (see IsCommonField); every other field reads as nil for them.
package video
