package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	value, ok, err := store.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if value != "v1" {
		t.Errorf("expected v1, got %q", value)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k1"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryStore_ExpiresLazily(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", "v1", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := store.Get(ctx, "k1"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := NewMemoryStore()

	value, ok, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || value != "" {
		t.Errorf("expected clean miss, got ok=%v value=%q", ok, value)
	}
}
