// Package entry classifies the children of a media directory into the roles
// the reconciler acts on.
package entry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"jellyclean/internal/fileutil"
	"jellyclean/internal/naming"
)

// Kind is the role of a filesystem entry inside a title directory.
type Kind int

const (
	KindOther Kind = iota
	KindVideo
	KindSubtitle
	KindSubtitleBundle
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindSubtitle:
		return "subtitle"
	case KindSubtitleBundle:
		return "subtitle_bundle"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry is a path observed in a directory listing. It is only valid until
// the next mutation of its parent.
type Entry struct {
	Path  string
	Name  string
	IsDir bool
}

// FromInfo builds an Entry for a child of dir.
func FromInfo(dir string, info os.FileInfo) Entry {
	return Entry{
		Path:  filepath.Join(dir, info.Name()),
		Name:  info.Name(),
		IsDir: info.IsDir(),
	}
}

// Classify maps e to its Kind. The checks run in a fixed order: video
// extension, subtitle extension, directory holding subtitles, any other
// directory, everything else.
func Classify(fsys afero.Fs, e Entry) (Kind, error) {
	switch {
	case naming.IsVideo(e.Name):
		return KindVideo, nil
	case naming.IsSubtitle(e.Name):
		return KindSubtitle, nil
	case !e.IsDir:
		return KindOther, nil
	}

	bundle, err := anyChildContains(fsys, e.Path, naming.ExtSRT)
	if err != nil {
		return KindOther, err
	}
	if bundle {
		return KindSubtitleBundle, nil
	}
	return KindDirectory, nil
}

// LooksLikeTVShow reports whether any direct child of dir contains "S0".
// The check is deliberately coarse and only flags a directory; nothing acts on
// it yet.
func LooksLikeTVShow(fsys afero.Fs, dir string) (bool, error) {
	return anyChildContains(fsys, dir, "S0")
}

func anyChildContains(fsys afero.Fs, dir, fragment string) (bool, error) {
	names, err := fileutil.ReadDirNames(fsys, dir)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if strings.Contains(name, fragment) {
			return true, nil
		}
	}
	return false, nil
}
