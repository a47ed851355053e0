package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("biz-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("biz-1") {
		t.Error("fourth request should be rejected")
	}
	if !l.Allow("biz-2") {
		t.Error("other business should have its own bucket")
	}
}

func TestAllowUnattributed(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	l.Allow("")
	if !l.Allow("") {
		t.Error("unattributed requests should always pass")
	}
}

func TestAllowStrictSeparateBucket(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	if !l.AllowStrict("login:a@example.com", 2, time.Minute) {
		t.Fatal("first strict request should be allowed")
	}
	if !l.AllowStrict("login:a@example.com", 2, time.Minute) {
		t.Fatal("second strict request should be allowed")
	}
	if l.AllowStrict("login:a@example.com", 2, time.Minute) {
		t.Error("third strict request should be rejected")
	}
	// The default bucket is unaffected.
	if !l.Allow("login:a@example.com") {
		t.Error("default limit should not be consumed by strict checks")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("biz-1") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("biz-1") {
		t.Fatal("second request inside window should be rejected")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("biz-1") {
		t.Error("request after window should be allowed")
	}
}
