// Package metadata locates and normalizes the acquisition metadata for a
// capture. A capture-level document is used as-is; a dataset-level document
// is reduced to the cleaned capture record and written back in place.
package metadata
