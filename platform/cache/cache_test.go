package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, ErrMiss) {
		t.Errorf("Get on absent key = %v, want ErrMiss", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	if !errors.Is(err, ErrMiss) {
		t.Errorf("Get on expired key = %v, want ErrMiss", err)
	}
}

func TestMemoryStoreDel(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	_ = store.Set(ctx, "a", []byte("1"), 0)
	_ = store.Set(ctx, "b", []byte("2"), 0)

	if err := store.Del(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Del: %v", err)
	}

	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after Del = %v, want ErrMiss", err)
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	original := []byte("immutable")
	_ = store.Set(ctx, "k", original, 0)
	original[0] = 'X'

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "immutable" {
		t.Errorf("cached value mutated: %q", got)
	}
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, "redis://"+srv.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}

	if _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get on absent key = %v, want ErrMiss", err)
	}

	if err := store.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after Del = %v, want ErrMiss", err)
	}

	// TTL is enforced by the server clock.
	srv.FastForward(2 * time.Minute)
	_ = store.Set(ctx, "short", []byte("v"), time.Minute)
	srv.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after TTL = %v, want ErrMiss", err)
	}
}
