package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"jellyclean/internal/config"
	"jellyclean/internal/faults"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RootDirectory returns an error marked faults.ErrNotADirectory unless path
// names an existing directory on fsys.
func RootDirectory(fsys afero.Fs, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return faults.Wrap(faults.ErrNotADirectory, "preflight", "stat root", path+" does not exist", nil)
		}
		return faults.Filesystem("stat", path, err)
	}
	if !info.IsDir() {
		return faults.Wrap(faults.ErrNotADirectory, "preflight", "stat root", path+" is not a directory", nil)
	}
	return nil
}

// RunAll executes the readiness checks for cleaning root with cfg. Checks for
// optional features only run when the feature is enabled.
func RunAll(cfg *config.Config, root string) []Result {
	results := []Result{CheckDirectoryAccess("Media directory", root)}
	if cfg == nil {
		return results
	}
	if cfg.Journal.Enabled || cfg.Run.SingleInstance {
		results = append(results, CheckStateDirectory(cfg.Paths.StateDir))
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStateDirectory passes when the state directory is usable or can be
// created on first use.
func CheckStateDirectory(path string) Result {
	const name = "State directory"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
