// Package registry holds the live, ordered set of segments shared by the render loop and the configuration API.
//
// A [Snapshot] is an immutable, ordered id → [models.Segment] mapping; order is strip order, so segment N starts
// where segment N-1 ends. The [Registry] publishes one snapshot at a time: [Registry.Snapshot] hands out the
// current one and [Registry.Replace] swaps in a new one wholesale. Readers therefore observe either the old or
// the new mapping in full, and rendering never races a write.
//
// [Marshal] and [Unmarshal] convert snapshots to and from the JSON object shape served on GET /data and stored
// by the persistence adapter, keeping key order.
package registry
