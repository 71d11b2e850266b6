// Package fileutil holds the filesystem primitives the reconciler is built on:
// snapshot listings and collision-checked moves over an afero.Fs.
package fileutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
	"github.com/spf13/afero"

	"jellyclean/internal/faults"
)

// ReadDirSorted lists dir once and returns its children in natural name order,
// so "T.eng.2.srt" sorts before "T.eng.10.srt". The slice is a snapshot;
// callers may mutate dir while iterating it.
func ReadDirSorted(fsys afero.Fs, dir string) ([]os.FileInfo, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, faults.Filesystem("list", dir, err)
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return natural.Less(infos[i].Name(), infos[j].Name())
	})
	return infos, nil
}

// ReadDirNames is ReadDirSorted reduced to child names.
func ReadDirNames(fsys afero.Fs, dir string) ([]string, error) {
	infos, err := ReadDirSorted(fsys, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

// Exists reports whether path is present.
func Exists(fsys afero.Fs, path string) (bool, error) {
	ok, err := afero.Exists(fsys, path)
	if err != nil {
		return false, faults.Filesystem("stat", path, err)
	}
	return ok, nil
}

// Move renames src to dst. It returns false without touching the filesystem
// when both paths are equal, and a CollisionError when dst already exists.
func Move(fsys afero.Fs, src, dst string) (bool, error) {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return false, nil
	}
	exists, err := Exists(fsys, dst)
	if err != nil {
		return false, err
	}
	if exists {
		return false, &faults.CollisionError{Source: src, Target: dst}
	}
	if err := fsys.Rename(src, dst); err != nil {
		return false, faults.Filesystem("rename", src, err)
	}
	return true, nil
}

// Remove deletes a single file.
func Remove(fsys afero.Fs, path string) error {
	if err := fsys.Remove(path); err != nil {
		return faults.Filesystem("remove", path, err)
	}
	return nil
}

// RemoveAll deletes path and everything beneath it.
func RemoveAll(fsys afero.Fs, path string) error {
	if err := fsys.RemoveAll(path); err != nil {
		return faults.Filesystem("remove all", path, err)
	}
	return nil
}

// Mkdir creates a single directory, failing with a CollisionError when the
// path already exists.
func Mkdir(fsys afero.Fs, path string) error {
	exists, err := Exists(fsys, path)
	if err != nil {
		return err
	}
	if exists {
		return &faults.CollisionError{Source: path, Target: path}
	}
	if err := fsys.Mkdir(path, 0o755); err != nil {
		return faults.Filesystem("mkdir", path, err)
	}
	return nil
}
