// Package database provides the SQLite-backed video collection.
//
// It handles storage and retrieval of:
//   - Video records with their flags and probed metadata
//   - Property types and per-video property values
//   - The persisted term index (msgpack blob in the metadata table)
//
// The whole collection is loaded into memory when the database is opened;
// reads are served from memory and every mutation is written through to
// SQLite before it is applied in memory. Mutations publish change
// notifications (see package notify) after the write lock is released, so
// subscribers may read the collection from their callbacks.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
