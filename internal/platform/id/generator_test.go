package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator("fx-")
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
	if !strings.HasPrefix(first, "fx-") {
		t.Fatalf("expected prefix, got %s", first)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(first, "fx-")); err != nil {
		t.Fatalf("expected uuid body: %v", err)
	}
}
