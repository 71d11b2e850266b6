package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"jellyclean/internal/runlock"
	"jellyclean/internal/testsupport"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "jellyclean.lock")

	first, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if first.Path() != path {
		t.Fatalf("unexpected path %q", first.Path())
	}

	if _, err := runlock.Acquire(path); !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld while locked, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	second, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	_ = second.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *runlock.Lock
	if err := l.Release(); err != nil {
		t.Fatalf("nil Release returned %v", err)
	}
}

func TestAcquireAtConfiguredLockPath(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSingleInstance())

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer func() { _ = lock.Release() }()

	if filepath.Dir(lock.Path()) != cfg.Paths.StateDir {
		t.Fatalf("lock %q not inside state dir %q", lock.Path(), cfg.Paths.StateDir)
	}
}
