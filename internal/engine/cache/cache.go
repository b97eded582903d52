// Package cache implements the segment result cache and checkpoint
// snapshotting: an in-memory LRU keyed by segment cache key,
// an optional plaintext-or-encrypted disk tier, and the Checkpoint type the
// Push/Pull Handler's one-retry rewind uses.
package cache

import (
	"container/list"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"projector/internal/engine/balance"
	"projector/internal/engine/spending"
	"projector/internal/models"
	"projector/internal/storage"
)

var sanitizeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// entry is one in-memory LRU slot, holding the per-account consolidated
// activity stream produced by processing one segment.
type entry struct {
	key        string
	activities map[string][]models.ConsolidatedActivity
	sizeBytes  int
}

// Cache is a size-bounded (MB) in-memory LRU of segment results, backed by
// an optional disk tier.
type Cache struct {
	mu         sync.Mutex
	capacity   int // bytes; 0 disables in-memory eviction (unbounded)
	usedBytes  int
	ll         *list.List
	index      map[string]*list.Element

	disk    *storage.Storage
	diskDir string
}

type diskEnvelope struct {
	Data      map[string][]models.ConsolidatedActivity `json:"data"`
	Timestamp time.Time                                `json:"timestamp"`
	ExpiresAt *time.Time                                `json:"expiresAt,omitempty"`
}

// New builds a Cache from a CachePolicy. A non-empty DiskCacheDir layers a
// disk tier behind the in-memory LRU; a non-empty EncryptionKey causes that
// tier to be written through age scrypt encryption.
func New(policy models.CachePolicy) (*Cache, error) {
	c := &Cache{
		capacity: policy.MaxMemoryMB * 1024 * 1024,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
		diskDir:  policy.DiskCacheDir,
	}

	if policy.DiskCacheDir == "" {
		return c, nil
	}

	s, err := storage.New(policy.DiskCacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache: open disk tier: %w", err)
	}
	if err := s.MkdirAll(policy.DiskCacheDir, 0755); err != nil {
		return nil, fmt.Errorf("cache: create disk tier: %w", err)
	}

	if policy.EncryptionKey != "" {
		if s.IsEncrypted() {
			if err := s.Unlock(policy.EncryptionKey); err != nil {
				return nil, fmt.Errorf("cache: unlock disk tier: %w", err)
			}
		} else if err := s.EnableEncryption(policy.EncryptionKey); err != nil {
			return nil, fmt.Errorf("cache: enable encryption: %w", err)
		}
	}

	c.disk = s
	return c, nil
}

// Get returns the cached per-account activity map for key, consulting
// memory first and falling back to the disk tier.
func (c *Cache) Get(key string) (map[string][]models.ConsolidatedActivity, bool) {
	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		c.ll.MoveToFront(el)
		act := el.Value.(*entry).activities
		c.mu.Unlock()
		return act, true
	}
	c.mu.Unlock()

	if c.disk == nil {
		return nil, false
	}

	raw, err := c.disk.ReadFile(c.diskPath(key))
	if err != nil {
		return nil, false
	}
	var env diskEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if env.ExpiresAt != nil && time.Now().After(*env.ExpiresAt) {
		return nil, false
	}

	c.promote(key, env.Data)
	return env.Data, true
}

// Put stores key's per-account activity map in memory and, if a disk tier
// is configured, writes it through Storage's uuid-suffixed atomic write.
func (c *Cache) Put(key string, activities map[string][]models.ConsolidatedActivity) error {
	c.promote(key, activities)

	if c.disk == nil {
		return nil
	}

	env := diskEnvelope{Data: activities, Timestamp: time.Now()}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: marshal envelope: %w", err)
	}
	return c.disk.WriteFile(c.diskPath(key), raw, 0644)
}

func (c *Cache) diskPath(key string) string {
	name := sanitizeFilename.ReplaceAllString(key, "_") + ".json"
	return filepath.Join(c.diskDir, name)
}

// promote inserts or refreshes key at the front of the LRU, evicting the
// least-recently-used entries until the in-memory budget is satisfied.
func (c *Cache) promote(key string, activities map[string][]models.ConsolidatedActivity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := estimateSize(activities)

	if el, ok := c.index[key]; ok {
		c.usedBytes -= el.Value.(*entry).sizeBytes
		c.ll.Remove(el)
		delete(c.index, key)
	}

	el := c.ll.PushFront(&entry{key: key, activities: activities, sizeBytes: size})
	c.index[key] = el
	c.usedBytes += size

	if c.capacity <= 0 {
		return
	}
	for c.usedBytes > c.capacity {
		back := c.ll.Back()
		if back == nil {
			break
		}
		ev := back.Value.(*entry)
		c.ll.Remove(back)
		delete(c.index, ev.key)
		c.usedBytes -= ev.sizeBytes
	}
}

// estimateSize roughly sizes an activity map for the in-memory budget: a
// fixed per-activity overhead plus the id/name/category string lengths,
// cheap enough to compute on every Put without a full JSON round-trip.
func estimateSize(activities map[string][]models.ConsolidatedActivity) int {
	const perActivityOverhead = 128
	total := 0
	for _, list := range activities {
		for _, a := range list {
			total += perActivityOverhead + len(a.ID) + len(a.Name) + len(a.Category)
		}
	}
	return total
}

// Checkpoint ties together the Balance Tracker, Spending Tracker Manager,
// and processed-event set snapshots the Push/Pull Handler's one-retry
// rewind restores after injecting AUTO-PULL/AUTO-PUSH events.
type Checkpoint struct {
	balanceSnap  *balance.Snapshot
	spendingSnap *spending.Snapshot
}

// Capture snapshots tracker and spendingMgr's current state.
func Capture(tracker *balance.Tracker, spendingMgr *spending.Manager) Checkpoint {
	return Checkpoint{
		balanceSnap:  tracker.Snapshot(),
		spendingSnap: spendingMgr.Snapshot(),
	}
}

// Restore reverts tracker and spendingMgr to the state captured in cp.
func (cp Checkpoint) Restore(tracker *balance.Tracker, spendingMgr *spending.Manager) {
	tracker.Restore(cp.balanceSnap)
	spendingMgr.Restore(cp.spendingSnap)
}
