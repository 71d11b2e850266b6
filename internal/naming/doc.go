// Package naming converts raw media names into the canonical
// Title.Words.Year[.ext] form and validates names against that grammar.
//
// A canonical name is one or more dot-terminated tokens followed by a four
// digit year and an optional .mkv or .mp4 extension. Canonical names are fixed
// points: Normalize returns them unchanged. Everything else is cleaned
// (whitespace to dots, parentheses dropped) and cut after the last year-like
// token, the point where release tags usually begin.
package naming
