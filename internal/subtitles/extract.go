package subtitles

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"

	"jellyclean/internal/fileutil"
	"jellyclean/internal/logging"
	"jellyclean/internal/naming"
)

var fold = cases.Fold()

// Placement is one planned subtitle move out of a bundle.
type Placement struct {
	Source string
	Target string
}

// Extractor moves English subtitles out of bundle directories.
type Extractor struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewExtractor constructs an Extractor over fsys.
func NewExtractor(fsys afero.Fs, logger *slog.Logger) *Extractor {
	return &Extractor{fs: fsys, logger: logging.NewComponentLogger(logger, "subtitles")}
}

// IsEnglish reports whether name is an .srt file whose name mentions "eng"
// in any letter case.
func IsEnglish(name string) bool {
	return naming.IsSubtitle(name) && strings.Contains(fold.String(name), "eng")
}

// Plan lists bundleDir once and assigns every English subtitle its target in
// targetDir, numbering from start. It returns the counter value to resume
// from. Nothing is moved.
func (x *Extractor) Plan(bundleDir, targetDir string, start int, base string) ([]Placement, int, error) {
	names, err := fileutil.ReadDirNames(x.fs, bundleDir)
	if err != nil {
		return nil, start, err
	}
	next := start
	var placements []Placement
	for _, name := range names {
		if !IsEnglish(name) {
			x.logger.Debug("dropping subtitle bundle file",
				logging.String("bundle", bundleDir),
				logging.String("file", name),
			)
			continue
		}
		placements = append(placements, Placement{
			Source: filepath.Join(bundleDir, name),
			Target: filepath.Join(targetDir, naming.SubtitleName(base, next)),
		})
		next++
	}
	return placements, next, nil
}

// Place performs planned moves in order. Every target must be free; an
// existing file fails the move with a CollisionError instead of being
// overwritten. It returns how many moves completed.
func (x *Extractor) Place(placements []Placement) (int, error) {
	for i, p := range placements {
		if _, err := fileutil.Move(x.fs, p.Source, p.Target); err != nil {
			return i, err
		}
		x.logger.Debug("placed subtitle",
			logging.String("source", p.Source),
			logging.String("target", p.Target),
		)
	}
	return len(placements), nil
}

// Extract moves the English subtitles of bundleDir into targetDir as
// "<base>.eng.<n>.srt" starting at n = start, then removes bundleDir
// recursively whatever it still holds. It returns the next counter value.
func (x *Extractor) Extract(bundleDir, targetDir string, start int, base string) (int, error) {
	placements, next, err := x.Plan(bundleDir, targetDir, start, base)
	if err != nil {
		return start, err
	}
	if placed, err := x.Place(placements); err != nil {
		return start + placed, err
	}
	if err := fileutil.RemoveAll(x.fs, bundleDir); err != nil {
		return next, err
	}
	x.logger.Debug("removed subtitle bundle",
		logging.String("bundle", bundleDir),
		logging.Int("extracted", len(placements)),
	)
	return next, nil
}
