package classifier

import (
	"sync"
	"time"
)

// tokenCache holds the service token for the classifier API. It is a plain
// time-bounded cache with get/set/evict; a token is returned only while it
// has comfortably more than a round trip of validity left.
type tokenCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

const expirySlack = 30 * time.Second

func (c *tokenCache) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.expiry.Add(-expirySlack)) {
		return "", false
	}
	return c.token, true
}

func (c *tokenCache) set(token string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiry = expiry
}

func (c *tokenCache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}
