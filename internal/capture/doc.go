// Package capture classifies the files that make up one hyperspectral scan.
//
// A capture is six logical roles (raw cube, header, preview, frame index,
// instrument settings, metadata). Resolve groups candidate paths into those
// roles by suffix and records whether the non-metadata members share a
// directory; HasAllFiles answers the cheaper admission question over a
// remote listing without touching the filesystem.
package capture
