package handlers

import (
	"os"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"tick-backtest/internal/backtest"
	"tick-backtest/internal/metrics"
)

const defaultResultCacheSize = 128

// StoredResult is a finished run kept for ledger retrieval.
type StoredResult struct {
	ID       string
	Feed     string
	Result   *backtest.Result
	Finished time.Time
}

// ResultStore keeps the most recent backtest results by run id. Older
// results are evicted once the store is full.
type ResultStore struct {
	results *lru.Cache[string, *StoredResult]
}

// NewResultStore returns a store of up to size results. size <= 0 reads
// RESULT_CACHE_SIZE, falling back to a default.
func NewResultStore(size int) (*ResultStore, error) {
	if size <= 0 {
		size = defaultResultCacheSize
		if s := os.Getenv("RESULT_CACHE_SIZE"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				size = n
			}
		}
	}
	c, err := lru.New[string, *StoredResult](size)
	if err != nil {
		return nil, err
	}
	return &ResultStore{results: c}, nil
}

func (s *ResultStore) Put(r *StoredResult) {
	s.results.Add(r.ID, r)
}

func (s *ResultStore) Get(id string) (*StoredResult, bool) {
	r, ok := s.results.Get(id)
	result := "miss"
	if ok {
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues("result", result).Inc()
	return r, ok
}

func (s *ResultStore) Len() int {
	return s.results.Len()
}
