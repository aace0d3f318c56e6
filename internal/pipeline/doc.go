// Package pipeline runs one capture end to end: admission, file-set and
// metadata resolution, staging, conversion, output verification, upload,
// and trait reporting. Each capture's final status lands in the history
// store.
package pipeline
