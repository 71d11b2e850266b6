package reconcile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"jellyclean/internal/faults"
	"jellyclean/internal/logging"
	"jellyclean/internal/reconcile"
	"jellyclean/internal/testsupport"
)

func newReconciler(fsys afero.Fs, dryRun bool) *reconcile.Reconciler {
	return reconcile.New(fsys, logging.NewNop(), reconcile.Options{DryRun: dryRun})
}

func writeContent(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readContent(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func assertTree(t *testing.T, fsys afero.Fs, root string, want ...string) {
	t.Helper()
	got := testsupport.Tree(t, fsys, root)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("tree mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestReconcileProducesCanonicalLayout(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	dir := filepath.Join(root, "The Movie (2000) [1080p]")
	writeContent(t, fsys, filepath.Join(dir, "the movie 2000 1080p.mkv"), "video")
	writeContent(t, fsys, filepath.Join(dir, "movie.srt"), "loose")
	writeContent(t, fsys, filepath.Join(dir, "Subs", "English.srt"), "bundled english")
	writeContent(t, fsys, filepath.Join(dir, "Subs", "French.srt"), "bundled french")
	writeContent(t, fsys, filepath.Join(dir, "README.txt"), "junk")

	result, err := newReconciler(fsys, false).Reconcile(context.Background(), root, "The Movie (2000) [1080p]")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	assertTree(t, fsys, root,
		"The.Movie.2000/",
		"The.Movie.2000/the.movie.2000.mkv",
		"The.Movie.2000/The.Movie.2000.eng.1.srt",
		"The.Movie.2000/The.Movie.2000.eng.2.srt",
	)
	target := filepath.Join(root, "The.Movie.2000")
	if got := readContent(t, fsys, filepath.Join(target, "The.Movie.2000.eng.1.srt")); got != "bundled english" {
		t.Fatalf("eng.1 holds %q, want the bundled english subtitle", got)
	}
	if got := readContent(t, fsys, filepath.Join(target, "The.Movie.2000.eng.2.srt")); got != "loose" {
		t.Fatalf("eng.2 holds %q, want the loose subtitle", got)
	}

	if result.Plan.Canonical != "The.Movie.2000" || result.Plan.Target != target {
		t.Fatalf("unexpected plan %+v", result.Plan)
	}
	if result.Plan.Subtitles != 2 {
		t.Fatalf("subtitles = %d, want 2", result.Plan.Subtitles)
	}
	// 3 renames + 2 removals + directory rename
	if result.Mutations != 6 || result.Planned != 6 {
		t.Fatalf("mutations = %d planned = %d, want 6", result.Mutations, result.Planned)
	}
}

func TestReconcileCanonicalDirectoryIsNoop(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	dir := filepath.Join(root, "Feel The Noise 2000 1975 720p")
	writeContent(t, fsys, filepath.Join(dir, "Feel The Noise 2000 1975 720p BluRay.mp4"), "video")
	for i := 1; i <= 11; i++ {
		writeContent(t, fsys, filepath.Join(dir, "part"+strings.Repeat("x", i)+".srt"), "sub")
	}
	r := newReconciler(fsys, false)

	if _, err := r.Reconcile(context.Background(), root, filepath.Base(dir)); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	canonical := "Feel.The.Noise.2000.1975"
	if ok, _ := afero.Exists(fsys, filepath.Join(root, canonical, canonical+".eng.11.srt")); !ok {
		t.Fatalf("expected eleven numbered subtitles, got %q", testsupport.Tree(t, fsys, root))
	}

	before := testsupport.Snapshot(t, fsys, root)
	result, err := r.Reconcile(context.Background(), root, canonical)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if result.Mutations != 0 || result.Planned != 0 {
		t.Fatalf("expected zero mutations on canonical directory, got %d (planned %d)", result.Mutations, result.Planned)
	}
	if diff := testsupport.EqualSnapshots(before, testsupport.Snapshot(t, fsys, root)); diff != "" {
		t.Fatalf("canonical directory was modified: %s", diff)
	}
}

func TestReconcileNumbersSubtitlesInNaturalOrder(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	dir := filepath.Join(root, "Film 2001")
	for _, name := range []string{"10.srt", "2.srt", "1.srt"} {
		writeContent(t, fsys, filepath.Join(dir, name), name)
	}

	if _, err := newReconciler(fsys, false).Reconcile(context.Background(), root, "Film 2001"); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	target := filepath.Join(root, "Film.2001")
	for n, want := range map[string]string{"1": "1.srt", "2": "2.srt", "3": "10.srt"} {
		if got := readContent(t, fsys, filepath.Join(target, "Film.2001.eng."+n+".srt")); got != want {
			t.Fatalf("eng.%s holds %q, want %q", n, got, want)
		}
	}
}

func TestReconcileStagesSwappedTargets(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	dir := filepath.Join(root, "Film.2001")
	writeContent(t, fsys, filepath.Join(dir, "Film.2001.eng.1.srt"), "old")
	writeContent(t, fsys, filepath.Join(dir, "Extra.srt"), "new")

	result, err := newReconciler(fsys, false).Reconcile(context.Background(), root, "Film.2001")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := readContent(t, fsys, filepath.Join(dir, "Film.2001.eng.1.srt")); got != "new" {
		t.Fatalf("eng.1 holds %q, want %q", got, "new")
	}
	if got := readContent(t, fsys, filepath.Join(dir, "Film.2001.eng.2.srt")); got != "old" {
		t.Fatalf("eng.2 holds %q, want %q", got, "old")
	}
	assertTree(t, fsys, root, "Film.2001/", "Film.2001/Film.2001.eng.1.srt", "Film.2001/Film.2001.eng.2.srt")
	if result.Mutations != 2 {
		t.Fatalf("mutations = %d, want 2", result.Mutations)
	}
}

func TestReconcileFormatErrorLeavesEntryUntouched(t *testing.T) {
	tests := []struct {
		name  string
		dir   string
		files []string
	}{
		{name: "directory without year", dir: "No Year Here", files: []string{"movie.mkv", "junk.txt"}},
		{name: "video without year", dir: "Film 2001", files: []string{"sample.mkv", "junk.txt"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			root := "/media"
			for _, f := range tc.files {
				writeContent(t, fsys, filepath.Join(root, tc.dir, f), f)
			}
			before := testsupport.Snapshot(t, fsys, root)

			_, err := newReconciler(fsys, false).Reconcile(context.Background(), root, tc.dir)
			if !errors.Is(err, faults.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
			if diff := testsupport.EqualSnapshots(before, testsupport.Snapshot(t, fsys, root)); diff != "" {
				t.Fatalf("entry was modified: %s", diff)
			}
		})
	}
}

func TestReconcileCollisionLeavesEntryUntouched(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
	}{
		{name: "directory target exists", setup: []string{"Film 2001/junk.txt", "Film.2001/keep.txt"}},
		{name: "two videos share a name", setup: []string{"Film 2001/film 2001.mkv", "Film 2001/film.2001.mkv"}},
		{name: "directory target is a file", setup: []string{"Film 2001/junk.txt", "Film.2001"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			root := "/media"
			for _, f := range tc.setup {
				writeContent(t, fsys, filepath.Join(root, f), f)
			}
			before := testsupport.Snapshot(t, fsys, root)

			_, err := newReconciler(fsys, false).Reconcile(context.Background(), root, "Film 2001")
			var collision *faults.CollisionError
			if !errors.As(err, &collision) {
				t.Fatalf("expected CollisionError, got %v", err)
			}
			if diff := testsupport.EqualSnapshots(before, testsupport.Snapshot(t, fsys, root)); diff != "" {
				t.Fatalf("entry was modified: %s", diff)
			}
		})
	}
}

func TestReconcileVideoCreatesDirectory(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	writeContent(t, fsys, filepath.Join(root, "Some Film 2004 720p.mkv"), "video")

	result, err := newReconciler(fsys, false).ReconcileVideo(context.Background(), root, "Some Film 2004 720p.mkv")
	if err != nil {
		t.Fatalf("ReconcileVideo: %v", err)
	}
	assertTree(t, fsys, root, "Some.Film.2004/", "Some.Film.2004/Some.Film.2004.mkv")
	if result.Mutations != 2 {
		t.Fatalf("mutations = %d, want 2", result.Mutations)
	}
}

func TestReconcileVideoRefusesExistingDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := "/media"
	writeContent(t, fsys, "/media/Other 2005.mp4", "video")
	writeContent(t, fsys, "/media/Other.2005/keep.txt", "keep")

	_, err := newReconciler(fsys, false).ReconcileVideo(context.Background(), root, "Other 2005.mp4")
	if !errors.Is(err, faults.ErrCollision) {
		t.Fatalf("expected collision, got %v", err)
	}
	if ok, _ := afero.Exists(fsys, "/media/Other 2005.mp4"); !ok {
		t.Fatal("video should stay in place")
	}
}

func TestReconcileDryRunChangesNothing(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	writeContent(t, fsys, filepath.Join(root, "Film 2001", "film 2001.mkv"), "video")
	writeContent(t, fsys, filepath.Join(root, "Film 2001", "junk.nfo"), "junk")
	before := testsupport.Snapshot(t, fsys, root)

	result, err := newReconciler(fsys, true).Reconcile(context.Background(), root, "Film 2001")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Mutations != 0 {
		t.Fatalf("dry run reported %d mutations", result.Mutations)
	}
	if result.Planned != 3 {
		t.Fatalf("planned = %d, want 3", result.Planned)
	}
	if diff := testsupport.EqualSnapshots(before, testsupport.Snapshot(t, fsys, root)); diff != "" {
		t.Fatalf("dry run modified the tree: %s", diff)
	}
}

// renameFailFs fails every rename whose target has the given suffix.
type renameFailFs struct {
	afero.Fs
	suffix string
}

func (f renameFailFs) Rename(oldname, newname string) error {
	if strings.HasSuffix(newname, f.suffix) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return f.Fs.Rename(oldname, newname)
}

func TestReconcileRollsBackOnRenameFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	fsys := renameFailFs{Fs: base, suffix: ".mkv"}
	root := "/media"
	writeContent(t, base, "/media/Film 2001/a.srt", "a")
	writeContent(t, base, "/media/Film 2001/b.srt", "b")
	writeContent(t, base, "/media/Film 2001/film 2001.mkv", "video")
	writeContent(t, base, "/media/Film 2001/junk.txt", "junk")

	result, err := newReconciler(fsys, false).Reconcile(context.Background(), root, "Film 2001")
	if !errors.Is(err, faults.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	if result.Mutations != 0 {
		t.Fatalf("expected every rename rolled back, %d left", result.Mutations)
	}
	assertTree(t, base, root,
		"Film 2001/",
		"Film 2001/a.srt",
		"Film 2001/b.srt",
		"Film 2001/film 2001.mkv",
		"Film 2001/junk.txt",
	)
	if faults.Hint(err) == "" {
		t.Fatal("expected an operator hint for the failure")
	}
}

func TestPlanDirectoryFlagsTVCandidates(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeContent(t, fsys, "/media/Show 2010/Show S01 extras/readme", "x")
	writeContent(t, fsys, "/media/Show 2010/show 2010.mkv", "x")

	plan, err := newReconciler(fsys, false).PlanDirectory("/media", "Show 2010")
	if err != nil {
		t.Fatalf("PlanDirectory: %v", err)
	}
	if !plan.TVCandidate {
		t.Fatal("expected tv candidate flag")
	}
	if len(plan.Removals) != 1 || !plan.Removals[0].Recursive() {
		t.Fatalf("expected the extras directory to be removed recursively, got %+v", plan.Removals)
	}
	if ok, _ := afero.Exists(fsys, "/media/Show 2010/Show S01 extras"); !ok {
		t.Fatal("planning must not delete anything")
	}
}
