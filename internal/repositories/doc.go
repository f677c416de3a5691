// Package repositories implements durable storage for the strip configuration.
//
// Storage is a flat key → blob store with whole-value semantics: every write replaces the full value under a key.
//
// Key Implementations:
//   - [BlobRepository] : SQLite-backed [Storage] over the blobs table created by the embedded migrations
//   - [SegmentStore] : persistence adapter that loads and saves a [registry.Snapshot] under a fixed key
//
// [SegmentStore.Restore] applies the startup policy: a missing or unreadable blob falls back to the built-in
// default segments, and the failure is logged rather than aborting startup.
package repositories
