package storage

import (
	"context"
	"testing"

	"rps_api/internal/domain"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	data := []byte("fake png bytes")

	if err := store.Store(ctx, "abc.png", "image/png", data); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, ct, err := store.Read(ctx, "abc.png")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("read returned %q, want %q", got, data)
	}
	if ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}

	if err := store.Delete(ctx, "abc.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Read(ctx, "abc.png"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("read after delete: err = %v, want not_found", err)
	}
}

func TestLocalStore_DeleteMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Delete(context.Background(), "nope.png"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestLocalStore_RejectsPathRefs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, ref := range []string{"", "../escape.png", "a/b.png"} {
		if err := store.Store(context.Background(), ref, "image/png", []byte("x")); !domain.IsKind(err, domain.KindBadInput) {
			t.Errorf("ref %q: err = %v, want bad_input", ref, err)
		}
	}
}
