// Package reconcile turns media directories into their canonical layout.
//
// A Reconciler handles one top-level entry at a time in two steps. Planning
// normalizes the entry name, snapshots the children in natural name order,
// classifies each one, and assigns every rename target, including subtitle
// numbers. Name and collision problems surface here, before anything on disk
// changes. Applying the plan renames files first, deletes junk second, and
// renames the directory last. A failed rename rolls back the renames already
// done.
//
// The Walker drives a Reconciler over the immediate children of a root
// directory. One bad entry never stops the walk; its error becomes the
// entry's Outcome and the walker moves on.
package reconcile
