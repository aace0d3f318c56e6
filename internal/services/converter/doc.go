// Package converter invokes the hyperspectral workflow script that turns a
// raw cube into a level-1 container.
//
// The workflow is opaque: it is started through a shell, its combined output
// is streamed to the logger line by line, and its exit status is the only
// result. Command execution sits behind the Executor interface so tests can
// script exit codes without a real shell.
package converter
