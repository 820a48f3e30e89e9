// Package storage provides JSON-based persistence for event snapshots.
//
// A snapshot records the events a run produced for one site, keyed by event
// ID, so the next run can tell new events from ones already published.
// Snapshots live in a state directory as snapshot-<host>.json files plus a
// combined snapshot.json across all sites. Losing the directory is harmless;
// the next run simply reports everything as new.
package storage
