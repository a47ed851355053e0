package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("resolve:abc", "tenant-1", time.Minute)

	v, ok := c.Get("resolve:abc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(string) != "tenant-1" {
		t.Errorf("expected tenant-1, got %v", v)
	}

	if _, ok := c.Get("resolve:missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("resolve:abc", "tenant-1", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("resolve:abc"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be dropped on access, Len=%d", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("resolve:abc", "tenant-1", time.Minute)
	c.Delete("resolve:abc")

	if _, ok := c.Get("resolve:abc"); ok {
		t.Error("expected miss after delete")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()
	c.Set("resolve:t1", "tenant-1", time.Minute)
	c.Set("resolve:t2", "tenant-2", time.Minute)
	c.Set("session:key", "x", time.Minute)

	c.Invalidate("resolve:")

	if _, ok := c.Get("resolve:t1"); ok {
		t.Error("expected resolve:t1 invalidated")
	}
	if _, ok := c.Get("resolve:t2"); ok {
		t.Error("expected resolve:t2 invalidated")
	}
	if _, ok := c.Get("session:key"); !ok {
		t.Error("expected session:key to survive")
	}
}
