// Package store provides the durable key-value stores used by the crawl.
//
// Two independent stores are kept, each in its own SQLite file:
//   - the title store, a membership set of article titles
//   - the category store, mapping category titles to 4-byte run markers
//
// Both share the same single-table layout, kv(key BLOB PRIMARY KEY, value BLOB).
// SQLite compares BLOBs with memcmp, so forward key iteration and marker
// comparisons are bytewise, the ordering the markers rely on.
//
// The stores are opened read-write for the crawl and may be reopened
// read-only for the export step.
package store
