// Package state persists runtime lifecycle facts for zyro.
//
// A Store keeps a string-keyed map in memory and writes the whole map after
// every mutation as a JSON envelope:
//
//	{"_meta": {"version": 1, "schema_hash": "...", "last_updated": "..."}, "data": {...}}
//
// Older files are upgraded on Load by running registered migrations for
// every version up to the current one. A separate lock file, created with
// O_EXCL, provides mutual exclusion between zyro processes sharing one state
// file.
package state
