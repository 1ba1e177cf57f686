// Package jsonldb loads and rewrites JSONL (JSON Lines) record files.
//
// # Overview
//
// A file holds one JSON value per line. [Store.Load] reads every non-blank line
// into a [RecordSet] held fully in memory; [Store.Rewrite] serializes a
// RecordSet back, replacing the file wholesale. There is no partial update: an
// edit to one record costs a rewrite of the whole file.
//
// # Records
//
// Records are kept as compact [json.RawMessage] values so key order, number
// formatting and nesting survive a load/rewrite round trip untouched. Only
// whitespace between tokens is normalized.
//
// # Failure Policy
//
// A single malformed line fails the whole load with a [*ParseError]: indices
// are identities for the editing layer above, so a partial set would silently
// shift them. I/O failures are reported as [*FileAccessError].
//
// # File Format
//
// UTF-8, newline-delimited, no header. Blank lines are skipped on read and never
// written. Every written record is newline-terminated.
package jsonldb
