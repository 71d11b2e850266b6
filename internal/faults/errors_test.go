package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"jellyclean/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrFilesystem, "reconcile", "rename", "failed", base)
	if !errors.Is(err, faults.ErrFilesystem) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"reconcile", "rename", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := faults.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, faults.ErrFilesystem) {
		t.Fatalf("expected filesystem marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "jellyclean failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCollisionErrorMarker(t *testing.T) {
	err := fmt.Errorf("move: %w", &faults.CollisionError{Source: "a", Target: "b"})
	if !errors.Is(err, faults.ErrCollision) {
		t.Fatalf("expected collision marker, got %v", err)
	}
	var collision *faults.CollisionError
	if !errors.As(err, &collision) || collision.Target != "b" {
		t.Fatalf("expected typed collision error, got %v", err)
	}
}

func TestFilesystemErrorHints(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{unix.EXDEV, "different filesystems"},
		{unix.EACCES, "permission denied"},
		{unix.ENOSPC, "no space"},
		{errors.New("other"), "retry"},
	}
	for _, tc := range cases {
		err := faults.Filesystem("rename", "/x", tc.err)
		if !errors.Is(err, faults.ErrFilesystem) {
			t.Fatalf("expected filesystem marker for %v", tc.err)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("expected %v to be unwrapped", tc.err)
		}
		if hint := faults.Hint(err); !strings.Contains(hint, tc.want) {
			t.Fatalf("hint for %v = %q, want it to contain %q", tc.err, hint, tc.want)
		}
	}
}

func TestFilesystemKeepsTaxonomyErrors(t *testing.T) {
	collision := &faults.CollisionError{Source: "a", Target: "b"}
	if got := faults.Filesystem("rename", "a", collision); got != collision {
		t.Fatalf("expected collision error to pass through, got %v", got)
	}
	if faults.Filesystem("rename", "a", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
