// Package services defines shared utilities consumed by the capture pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp capture names, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs skipped).
//
// Integrations with the conversion workflow, the Clowder data-management
// service, and BETYdb live in subpackages and report failures through the
// markers defined here.
package services
