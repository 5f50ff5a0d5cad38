package diskkit

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPathErrorUnwrap(t *testing.T) {
	err := NewPathError("get", "a/b.txt", ErrNotFound)

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to see ErrNotFound through PathError")
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}

	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatal("expected errors.As to find PathError")
	}
	if pe.Op != "get" || pe.Path != "a/b.txt" {
		t.Errorf("unexpected op/path: %s %s", pe.Op, pe.Path)
	}
}

func TestWrapErrKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapErr("put", "x.bin", ErrWrite, cause)

	if !errors.Is(err, ErrWrite) {
		t.Error("expected classification under ErrWrite")
	}
	if !errors.Is(err, cause) {
		t.Error("expected original cause to stay reachable")
	}
}

func TestWrapErrNilCause(t *testing.T) {
	err := WrapErr("stat", "x", ErrNotFound, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound")
	}
}

func TestWrapErrCauseAlreadyClassified(t *testing.T) {
	inner := NewPathError("get", "x", ErrNotFound)
	err := WrapErr("copy", "x", ErrNotFound, inner.Err)
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound")
	}
}

func TestIsPartialMove(t *testing.T) {
	pm := &PartialMoveError{Src: "a", Dst: "b", Err: fmt.Errorf("delete denied")}

	got, ok := IsPartialMove(fmt.Errorf("moving: %w", pm))
	if !ok {
		t.Fatal("expected partial move to be detected through wrapping")
	}
	if got.Src != "a" || got.Dst != "b" {
		t.Errorf("unexpected src/dst: %s %s", got.Src, got.Dst)
	}

	if _, ok := IsPartialMove(ErrWrite); ok {
		t.Error("plain write error must not read as partial move")
	}
}

func TestPartialMoveErrorMessage(t *testing.T) {
	pm := &PartialMoveError{Src: "a.txt", Dst: "b.txt", Err: fmt.Errorf("boom")}
	msg := pm.Error()
	if msg == "" {
		t.Fatal("empty message")
	}
	// Both locations must be named so the caller can clean up.
	for _, want := range []string{"a.txt", "b.txt"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
