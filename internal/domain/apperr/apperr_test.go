package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	sentinel := New(KindConflict, "duplicate", "already exists")
	wrapped := fmt.Errorf("create: %w", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("expected conflict kind, got %s", KindOf(wrapped))
	}
	if CodeOf(wrapped) != "duplicate" {
		t.Fatalf("expected duplicate code, got %s", CodeOf(wrapped))
	}
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal kind, got %s", KindOf(err))
	}
	if MessageOf(err) != "internal error" {
		t.Fatalf("expected generic message, got %q", MessageOf(err))
	}
}
