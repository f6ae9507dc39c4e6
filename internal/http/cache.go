package http

import (
	"context"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

// ResponseCache holds recently fetched resource payloads per student so
// back-to-back reads don't hammer the upstream portal. Entries are the
// already-marshalled data field of the response envelope.
//
// A nil cache is valid and never hits.
type ResponseCache struct {
	cache *bigcache.BigCache
}

func NewResponseCache(ttl time.Duration) (*ResponseCache, error) {
	c, err := bigcache.New(context.Background(), bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, err
	}
	return &ResponseCache{cache: c}, nil
}

func (c *ResponseCache) Get(studentID, path string) ([]byte, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(cacheKey(studentID, path))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *ResponseCache) Set(studentID, path string, data []byte) {
	if c == nil || c.cache == nil {
		return
	}
	_ = c.cache.Set(cacheKey(studentID, path), data)
}

func (c *ResponseCache) Close() error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

func cacheKey(studentID, path string) string {
	return strconv.FormatUint(xxhash.Sum64String(studentID+"\x00"+path), 16)
}
