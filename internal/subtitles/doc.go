// Package subtitles flattens subtitle bundles into a title directory.
//
// A bundle is a nested directory (typically "Subs") holding one .srt per
// language. Only English tracks survive: they are moved next to the video as
// <Title.Year>.eng.<n>.srt, continuing the numbering the caller has already
// used for loose subtitles, and the bundle itself is discarded.
//
// Extract is the one-step form: Plan, Place, then remove the bundle. The
// reconciler uses Plan alone and folds the placements into its own plan, so
// every move of a directory is collision-checked, ordered before deletions,
// and rolled back together; Place and Extract serve callers flattening a
// single bundle outside a reconcile pass.
package subtitles
