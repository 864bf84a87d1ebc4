// Package store persists the results of compilations.
//
// A Record holds the compiled JSON of one source file together with the
// BLAKE3 hash of the source and diagnostic counts. The watch command uses the
// hash to skip storing a file whose content did not change.
//
// Two backends are available:
//
//   - memory: a map, for tests and one-shot runs
//   - sqlite: a database file. The pure Go modernc.org/sqlite driver is used
//     by default; building with -tags cgo_sqlite switches to mattn/go-sqlite3.
//
// Wrap a store with Instrument to trace operations and report them to the
// metrics collector. Package retention prunes old records on a cron schedule.
package store
