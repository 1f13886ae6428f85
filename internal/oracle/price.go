package oracle

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
)

// PriceScale is the oracle's fixed-point convention: raw price integers
// carry 14 implied decimal places. This is a wire-protocol constant,
// distinct from the client-side order scale.
const PriceScale = 14

// PriceSample is one normalized oracle observation. Created fresh per
// successful decode and never mutated.
type PriceSample struct {
	Asset        AssetID
	Price        decimal.Decimal
	ObservedAt   uint64
	HasObserved  bool
	SourceOracle Kind
}

// ObservedTime returns the observation timestamp when the oracle
// reported one.
func (s PriceSample) ObservedTime() (time.Time, bool) {
	if !s.HasObserved {
		return time.Time{}, false
	}
	return time.Unix(int64(s.ObservedAt), 0).UTC(), true
}

type cacheKey struct {
	asset  string
	source Kind
}

// Cache is a short-lived read-through price cache keyed by
// (asset, source oracle). Safe for concurrent use; last writer wins.
type Cache struct {
	lru *expirable.LRU[cacheKey, PriceSample]
}

// DefaultCacheTTL bounds how stale a cached sample may be.
const DefaultCacheTTL = 30 * time.Second

// NewCache builds a bounded TTL cache. A zero ttl uses DefaultCacheTTL.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 128
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[cacheKey, PriceSample](size, nil, ttl)}
}

// Get returns an unexpired sample for the asset/oracle pair.
func (c *Cache) Get(asset AssetID, source Kind) (PriceSample, bool) {
	return c.lru.Get(cacheKey{asset: asset.String(), source: source})
}

// Put stores a sample under its asset/oracle pair.
func (c *Cache) Put(sample PriceSample) {
	c.lru.Add(cacheKey{asset: sample.Asset.String(), source: sample.SourceOracle}, sample)
}
