// Package preflight checks the paths jellyclean is about to touch before any
// entry is processed.
//
// RootDirectory is the hard gate: a root argument that is missing or not a
// directory ends the command before the walker starts. RunAll adds softer
// readiness checks (permissions, state directory) that the CLI "check"
// command prints and the clean command logs.
package preflight
