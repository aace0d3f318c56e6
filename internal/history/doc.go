// Package history persists the outcome of every capture the extractor has
// looked at in a SQLite database under the configured state directory.
//
// The store answers the admission question "has this capture already been
// processed?" and backs the `history` CLI listing. Rows are keyed by capture
// name; re-processing a capture overwrites its previous row.
package history
