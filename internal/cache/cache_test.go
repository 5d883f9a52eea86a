package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/namay10/userhub/internal/cache"
)

func TestMemoryGetSet(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "directory"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Set(ctx, "directory", []byte(`[]`))

	val, ok := c.Get(ctx, "directory")

	if !ok {
		t.Fatalf("expected hit after Set")
	}

	if string(val) != `[]` {
		t.Errorf("Get = %q, want %q", val, `[]`)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := cache.NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "directory", []byte(`[]`))

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "directory"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "directory", []byte(`[]`))
	c.Delete(ctx, "directory")

	if _, ok := c.Get(ctx, "directory"); ok {
		t.Fatalf("expected miss after Delete")
	}
}
