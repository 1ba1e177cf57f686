// Package session implements the record editing session over one loaded JSONL
// file.
//
// A session owns an in-memory record set and a [State]: the selected record
// identities, one edit buffer per selected identity, and per-identity delete
// confirmation flags. Identities are load-time indices. They stay attached to
// their record for the lifetime of the loaded set; deleting a record does not
// renumber the others until the file is reloaded.
//
// Every user action goes through [Apply], a pure function from
// (State, Records, Action) to a [Transition]. A transition that changes the
// record set asks for exactly one rewrite through its [Effects]; [Editor]
// performs it and only then adopts the new state, so a failed rewrite leaves
// the session as it was.
package session
