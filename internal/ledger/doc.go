// Package ledger persists per-book conversion outcomes in SQLite so
// repeated runs can skip already-converted directories and report batch
// summaries.
package ledger
