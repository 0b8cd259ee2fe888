// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sample

import "sync"

// CityCache maps institution ids to cities. It is shared across concurrent
// sample builds and snapshotted into the gather checkpoint so resolved
// cities survive a restart.
type CityCache struct {
	mu sync.Mutex
	m  map[string]string
}

// NewCityCache returns a cache seeded with entries, which may be nil.
func NewCityCache(entries map[string]string) *CityCache {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &CityCache{m: m}
}

// Get returns the cached city for an institution id.
func (c *CityCache) Get(institutionID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	city, ok := c.m[institutionID]
	return city, ok
}

// Put records the city for an institution id.
func (c *CityCache) Put(institutionID, city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[institutionID] = city
}

// Snapshot returns a copy of the cache contents for checkpointing.
func (c *CityCache) Snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}

// Len returns the number of cached entries.
func (c *CityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
