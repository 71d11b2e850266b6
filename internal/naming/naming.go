package naming

import (
	"fmt"
	"regexp"
	"strings"

	"jellyclean/internal/faults"
)

const (
	ExtMKV = ".mkv"
	ExtMP4 = ".mp4"
	ExtSRT = ".srt"
)

var (
	canonicalPattern = regexp.MustCompile(`^(?:[A-Za-z0-9_]+(?:-[A-Za-z0-9_]+)?\.)+[0-9]{4}(?:\.mkv|\.mp4)?$`)
	whitespaceRun    = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
	parentheses      = strings.NewReplacer("(", "", ")", "")
)

// FormatError reports a name that could not be reduced to the canonical
// grammar. Attempted holds the last candidate produced.
type FormatError struct {
	Original  string
	Attempted string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: could not validate name after reformat: %q -> %q", e.Original, e.Attempted)
}

func (e *FormatError) Is(target error) bool { return target == faults.ErrFormat }

// Validate reports whether name already matches the canonical grammar.
func Validate(name string) bool {
	return canonicalPattern.MatchString(name)
}

// Normalize returns the canonical form of raw.
func Normalize(raw string) (string, error) {
	if Validate(raw) {
		return raw, nil
	}

	cleaned := whitespaceRun.ReplaceAllString(raw, ".")
	cleaned = parentheses.Replace(cleaned)

	candidate := cleaned[:LastYearCutoff(cleaned)]
	if ext := VideoExtension(raw); ext != "" {
		candidate += ext
	}

	if !Validate(candidate) {
		return "", &FormatError{Original: raw, Attempted: candidate}
	}
	return candidate, nil
}

// VideoExtension returns ".mkv" or ".mp4" when name ends with one of them.
func VideoExtension(name string) string {
	switch {
	case strings.HasSuffix(name, ExtMKV):
		return ExtMKV
	case strings.HasSuffix(name, ExtMP4):
		return ExtMP4
	default:
		return ""
	}
}

// IsVideo reports whether name carries a supported video extension.
func IsVideo(name string) bool {
	return VideoExtension(name) != ""
}

// IsSubtitle reports whether name is an .srt file name.
func IsSubtitle(name string) bool {
	return strings.HasSuffix(name, ExtSRT)
}

// Base strips a trailing video extension from a canonical name.
func Base(canonical string) string {
	return strings.TrimSuffix(canonical, VideoExtension(canonical))
}

// SubtitleName builds the canonical English subtitle file name for the n-th
// subtitle of a title.
func SubtitleName(base string, n int) string {
	return fmt.Sprintf("%s.eng.%d%s", Base(base), n, ExtSRT)
}
