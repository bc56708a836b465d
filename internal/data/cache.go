package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"tick-backtest/internal/metrics"
	"tick-backtest/internal/model"
)

const defaultFeedCacheSize = 32

// FeedCache keeps recently loaded feeds in memory, keyed by path, format
// and the file's modification time so an edited file is reloaded.
// Cached feeds are shared: callers must not mutate them.
type FeedCache struct {
	feeds *lru.Cache[string, *model.Feed]
}

// NewFeedCache returns a cache holding up to size feeds. size <= 0 reads
// FEED_CACHE_SIZE from the environment, falling back to a default.
func NewFeedCache(size int) (*FeedCache, error) {
	if size <= 0 {
		size = defaultFeedCacheSize
		if s := os.Getenv("FEED_CACHE_SIZE"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				size = n
			}
		}
	}
	c, err := lru.New[string, *model.Feed](size)
	if err != nil {
		return nil, err
	}
	return &FeedCache{feeds: c}, nil
}

// Load returns the feed at path, reading it only on a cache miss.
func (c *FeedCache) Load(path, format string) (*model.Feed, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := CacheKey(path, format, info.ModTime().UnixNano(), info.Size())
	if feed, ok := c.Get(key); ok {
		return feed, nil
	}
	feed, err := LoadFeed(path, format)
	if err != nil {
		return nil, err
	}
	c.Add(key, feed)
	return feed, nil
}

func (c *FeedCache) Get(key string) (*model.Feed, bool) {
	if c == nil {
		return nil, false
	}
	feed, ok := c.feeds.Get(key)
	result := "miss"
	if ok {
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues("feed", result).Inc()
	return feed, ok
}

func (c *FeedCache) Add(key string, feed *model.Feed) {
	if c == nil {
		return
	}
	c.feeds.Add(key, feed)
}

func (c *FeedCache) Len() int {
	if c == nil {
		return 0
	}
	return c.feeds.Len()
}

// Purge removes all entries from the cache.
func (c *FeedCache) Purge() {
	if c == nil {
		return
	}
	c.feeds.Purge()
}

// CacheKey creates a deterministic, fixed-size key from its parts.
func CacheKey(parts ...any) string {
	keyStr := fmt.Sprint(parts...)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
