package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss with nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before set
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("unexpected hit before Set")
	}

	if err := c.Set(ctx, "k", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q", data)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	// Delete is idempotent
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	g1 := k.GraphKey(GraphKeyOpts{Source: "memory"})
	g2 := k.GraphKey(GraphKeyOpts{Source: "mongo"})
	if g1 == g2 {
		t.Error("different sources should produce different graph keys")
	}

	// Expanded set is order-insensitive.
	l1 := k.LayoutKey("h", LayoutKeyOpts{Mode: "columns", Expanded: []string{"a", "b"}})
	l2 := k.LayoutKey("h", LayoutKeyOpts{Mode: "columns", Expanded: []string{"b", "a"}})
	if l1 != l2 {
		t.Error("expanded set order should not change the layout key")
	}
	l3 := k.LayoutKey("h", LayoutKeyOpts{Mode: "columns", Expanded: []string{"a"}})
	if l1 == l3 {
		t.Error("different expanded sets should produce different keys")
	}

	a1 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "png"})
	if a1 == a2 {
		t.Error("different formats should produce different artifact keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:42:")
	key := scoped.GraphKey(GraphKeyOpts{Source: "memory"})
	if len(key) < 10 || key[:10] != "tenant:42:" {
		t.Errorf("scoped key should be prefixed: %s", key)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if k := fallback.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); k[:2] != "p:" {
		t.Errorf("unexpected key with nil inner: %s", k)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil {
		t.Errorf("should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// Non-retryable error stops immediately.
	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return ErrNotFound })
	if err != ErrNotFound || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	// Retryable error triggers retries.
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
