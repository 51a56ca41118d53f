// Package history records acquisitions and exports in SQLite.
//
// Rows are an append-only audit trail: each Acquire call and each transform
// export inserts one row and nothing updates it afterwards. Callers treat
// recording as best-effort and log failures instead of failing the operation.
//
// Schema changes bump schemaVersion in schema.go; users delete history.db to
// adopt the new schema.
package history
