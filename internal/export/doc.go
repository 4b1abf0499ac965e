// Package export encodes the comment feed and archives the results.
//
// Encode renders comments as JSON, CSV or Markdown. A Store keeps every
// export with its record; MemoryStore is the default and SQLiteStore
// persists the archive across restarts. Scheduler runs delayed exports.
package export
