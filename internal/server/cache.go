package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	gocache "github.com/patrickmn/go-cache"

	"blochview/internal/circuit"
	"blochview/internal/config"
)

// responseCache stores encoded processing responses. Simulation is
// deterministic, so identical circuits always produce identical bodies.
type responseCache struct {
	store *gocache.Cache
}

func newResponseCache(cfg config.Cache) *responseCache {
	if !cfg.Enabled {
		return nil
	}
	return &responseCache{store: gocache.New(cfg.TTL, cfg.CleanupInterval)}
}

// key hashes the re-encoded spec, so formatting and key order in the
// request body do not matter.
func (c *responseCache) key(spec circuit.Spec) (string, bool) {
	if c == nil {
		return "", false
	}
	raw, err := json.Marshal(spec)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), true
}

func (c *responseCache) get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *responseCache) set(key string, body []byte) {
	if c == nil {
		return
	}
	c.store.Set(key, body, gocache.DefaultExpiration)
}

func (c *responseCache) len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}
