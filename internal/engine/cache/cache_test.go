package cache

import (
	"strconv"
	"testing"
	"time"

	"projector/internal/engine/balance"
	"projector/internal/engine/spending"
	"projector/internal/models"
)

func TestCacheGetPutRoundTrip(t *testing.T) {
	c, err := New(models.CachePolicy{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	activities := map[string][]models.ConsolidatedActivity{
		"acct-1": {{ID: "act-1", Name: "Groceries", Amount: -50}},
	}
	c.Put("key-1", activities)

	got, ok := c.Get("key-1")
	if !ok {
		t.Fatal("expected a cache hit for key-1")
	}
	if len(got["acct-1"]) != 1 || got["acct-1"][0].ID != "act-1" {
		t.Fatalf("got %+v, want the stored activity back", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected a cache miss for an unknown key")
	}
}

// TestCacheEvictsLeastRecentlyUsed verifies the in-memory tier respects its
// MaxMemoryMB budget by evicting the least-recently-touched entry first.
func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(models.CachePolicy{MaxMemoryMB: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Each entry is small relative to the 1MB budget individually, but
	// enough of them together exceed it and force eviction of the oldest.
	for i := 0; i < 10000; i++ {
		key := "key-" + strconv.Itoa(i)
		c.Put(key, map[string][]models.ConsolidatedActivity{"acct": {{ID: key, Name: "x"}}})
	}

	if _, ok := c.Get("key-0"); ok {
		t.Fatal("the earliest entry should have been evicted once the budget was exceeded")
	}
	if _, ok := c.Get("key-9999"); !ok {
		t.Fatal("the most recently written entry should still be cached")
	}
}

func TestCheckpointCaptureRestore(t *testing.T) {
	tracker := balance.New(map[string]float64{"a": 100})
	spendingMgr := spending.New(nil, time.Time{})

	cp := Capture(tracker, spendingMgr)

	tracker.AdjustBalance("a", -1000)
	cp.Restore(tracker, spendingMgr)

	if got := tracker.GetBalance("a"); got != 100 {
		t.Fatalf("balance after checkpoint restore = %v, want 100", got)
	}
}
