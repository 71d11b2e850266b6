package testsupport

import (
	"io/fs"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte. Parent
// directories are created as needed.
func WriteFile(t testing.TB, fsys afero.Fs, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// Touch creates each path relative to root as a one-byte file. A trailing
// slash creates a directory instead.
func Touch(t testing.TB, fsys afero.Fs, root string, paths ...string) {
	t.Helper()

	for _, rel := range paths {
		if rel == "" {
			continue
		}
		full := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := fsys.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		WriteFile(t, fsys, full, 1)
	}
}

// FileState is the observable state of one path in a Snapshot.
type FileState struct {
	IsDir   bool
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

// Snapshot records every path below root, keyed by slash-separated relative
// path. Comparing two snapshots detects any rename, removal, or rewrite.
func Snapshot(t testing.TB, fsys afero.Fs, root string) map[string]FileState {
	t.Helper()

	states := map[string]FileState{}
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		states[filepath.ToSlash(rel)] = FileState{
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return states
}

// Tree lists every path below root in sorted slash-separated form. Directories
// carry a trailing slash.
func Tree(t testing.TB, fsys afero.Fs, root string) []string {
	t.Helper()

	snapshot := Snapshot(t, fsys, root)
	paths := make([]string, 0, len(snapshot))
	for rel, state := range snapshot {
		if state.IsDir {
			rel += "/"
		}
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}

// EqualSnapshots reports the first difference between two snapshots, or ""
// when they match.
func EqualSnapshots(before, after map[string]FileState) string {
	for path, want := range before {
		got, ok := after[path]
		if !ok {
			return "missing " + path
		}
		if got.IsDir != want.IsDir || got.Size != want.Size || got.Mode != want.Mode || !got.ModTime.Equal(want.ModTime) {
			return "changed " + path
		}
	}
	for path := range after {
		if _, ok := before[path]; !ok {
			return "added " + path
		}
	}
	return ""
}
