// Command jellyclean normalizes a media library directory in place.
//
//	jellyclean [--dry-run] <directory>
//
// Every immediate child of <directory> is brought into the canonical
// Title.Words.Year layout: one directory per title holding the video and its
// English subtitles numbered <title>.eng.N.srt. Junk files and extras are
// deleted. The command exits non-zero when the directory is missing or when
// any entry was skipped or failed; all other entries are still processed.
//
// Subcommands:
//
//	normalize <name>...   print the canonical form of raw names
//	check <directory>     run readiness checks without touching anything
//	history               show recorded runs (requires [journal] enabled)
//	config init|validate  manage the optional configuration file
//
// A directory literally named like a subcommand can be cleaned by passing a
// path such as ./history.
package main
