// Package cache provides a TTL file cache shared by the upstream providers
// and a monthly credit counter for the quota-billed odds API.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// FileCache stores JSON payloads on disk, one file per key. Reads past the
// TTL are treated as misses; the stale file is left for the next write to
// replace.
type FileCache struct {
	dir string
	mu  sync.Mutex
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

// Get loads the cached value for key into out if it exists and is younger
// than ttl. Returns false on miss, expiry, or decode failure.
func (c *FileCache) Get(key string, ttl time.Duration, out any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[WARN] cache: corrupt entry %s: %v", key, err)
		return false
	}
	if time.Since(env.StoredAt) > ttl {
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		log.Printf("[WARN] cache: decode %s: %v", key, err)
		return false
	}
	return true
}

// Put stores a value under key. Write failures are logged, not returned:
// the cache is best-effort.
func (c *FileCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[WARN] cache: encode %s: %v", key, err)
		return
	}
	env := envelope{StoredAt: time.Now(), Data: raw}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[WARN] cache: encode envelope %s: %v", key, err)
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		log.Printf("[WARN] cache: write %s: %v", key, err)
	}
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, sanitize(key)+".json")
}

// sanitize maps a cache key to a safe filename.
func sanitize(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_", "?", "_", "&", "_", "=", "_")
	return replacer.Replace(key)
}

// CreditTracker counts odds API requests against a monthly budget. Counts
// persist in the cache directory so restarts do not reset the tally.
type CreditTracker struct {
	path    string
	monthly int
	mu      sync.Mutex
}

type creditState struct {
	Month string `json:"month"`
	Used  int    `json:"used"`
}

// NewCreditTracker loads (or initialises) the counter file. A monthly limit
// of 0 disables enforcement.
func NewCreditTracker(dir string, monthly int) *CreditTracker {
	return &CreditTracker{path: filepath.Join(dir, "odds_api_credits.json"), monthly: monthly}
}

// Spend records n credits used. Returns false when the monthly budget is
// exhausted, in which case the credits are not recorded.
func (t *CreditTracker) Spend(n int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.load()
	if t.monthly > 0 && state.Used+n > t.monthly {
		log.Printf("[WARN] odds API credit budget exhausted (%d/%d used this month)", state.Used, t.monthly)
		return false
	}
	state.Used += n
	t.save(state)
	return true
}

// Used reports credits spent in the current month.
func (t *CreditTracker) Used() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load().Used
}

func (t *CreditTracker) load() creditState {
	month := time.Now().UTC().Format("2006-01")
	data, err := os.ReadFile(t.path)
	if err != nil {
		return creditState{Month: month}
	}
	var state creditState
	if err := json.Unmarshal(data, &state); err != nil || state.Month != month {
		return creditState{Month: month}
	}
	return state
}

func (t *CreditTracker) save(state creditState) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		log.Printf("[WARN] credit tracker: write %s: %v", t.path, err)
	}
}
