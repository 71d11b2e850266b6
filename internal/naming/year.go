package naming

import "regexp"

var yearToken = regexp.MustCompile(`\b(?:19|20)[0-9]{2}\b`)

// LastYearCutoff returns the end offset of the last year-like token (1900-2099
// on word boundaries) that does not start the string, or 0 when there is none.
//
// Release tags follow the year, so everything past the cutoff is discarded.
// Earlier year-like tokens stay part of the title: "Feel.The.Noise.2000.1975"
// keeps both numbers.
func LastYearCutoff(s string) int {
	cutoff := 0
	for _, loc := range yearToken.FindAllStringIndex(s, -1) {
		if loc[0] == 0 {
			continue
		}
		cutoff = loc[1]
	}
	return cutoff
}
