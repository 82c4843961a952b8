package credentials

import (
	"context"
	"sync"

	"github.com/sagarc03/signet"
)

// CachedProvider loads a credential once and shares it across callers.
// Failed loads are not cached; the next call retries.
type CachedProvider struct {
	source signet.CredentialProvider

	mu     sync.RWMutex
	cred   signet.Credential
	loaded bool
}

// Cached wraps source with a process-wide cache.
func Cached(source signet.CredentialProvider) *CachedProvider {
	return &CachedProvider{source: source}
}

// Credential returns the cached credential, loading it on first use.
func (c *CachedProvider) Credential(ctx context.Context) (signet.Credential, error) {
	c.mu.RLock()
	if c.loaded {
		cred := c.cred
		c.mu.RUnlock()
		return cred, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.cred, nil
	}

	cred, err := c.source.Credential(ctx)
	if err != nil {
		return signet.Credential{}, err
	}

	c.cred = cred
	c.loaded = true
	return cred, nil
}
