// Package preflight provides readiness checks for the directories, workflow
// tooling, and remote services the pipeline depends on.
//
// The extract command runs RunAll before touching any capture and refuses
// to start when a check fails; the preflight command prints every result.
// Service checks are gated by their config toggle.
package preflight
