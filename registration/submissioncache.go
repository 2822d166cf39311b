package registration

import (
	"strings"
	"sync"
	"time"
)

// SubmissionCache blocks rapid resubmission of the same identity. Keys are
// normalized email and full phone; entries expire after the window and the
// cache is bounded, evicting the oldest entry when full.
type SubmissionCache struct {
	mu      sync.Mutex
	window  time.Duration
	maxSize int
	seen    map[string]time.Time

	now func() time.Time
}

func NewSubmissionCache(window time.Duration, maxSize int) *SubmissionCache {
	return &SubmissionCache{
		window:  window,
		maxSize: maxSize,
		seen:    map[string]time.Time{},
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// Seen reports whether either identity key was remembered within the window.
func (c *SubmissionCache) Seen(email, fullPhone string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.expireLocked(now)

	for _, key := range cacheKeys(email, fullPhone) {
		if expiry, ok := c.seen[key]; ok && expiry.After(now) {
			return true
		}
	}
	return false
}

func (c *SubmissionCache) Remember(email, fullPhone string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.expireLocked(now)

	for _, key := range cacheKeys(email, fullPhone) {
		for len(c.seen) >= c.maxSize {
			c.evictOldestLocked()
		}
		c.seen[key] = now.Add(c.window)
	}
}

func cacheKeys(email, fullPhone string) []string {
	keys := []string{}
	if e := normalizeEmail(email); e != "" {
		keys = append(keys, "email:"+e)
	}
	if p := normalizePhone(fullPhone); p != "" {
		keys = append(keys, "phone:"+p)
	}
	return keys
}

func (c *SubmissionCache) expireLocked(now time.Time) {
	for key, expiry := range c.seen {
		if !expiry.After(now) {
			delete(c.seen, key)
		}
	}
}

func (c *SubmissionCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, expiry := range c.seen {
		if oldestKey == "" || expiry.Before(oldest) {
			oldestKey = key
			oldest = expiry
		}
	}
	delete(c.seen, oldestKey)
}
