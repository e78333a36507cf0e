package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
)

// descriptorKeyVersion is bumped whenever the engine's output for a given
// SMILES string can change, so stale entries are never read.
const descriptorKeyVersion = "v1"

// DescriptorLookupTimeout is the per-round-trip budget for the cache that
// backs a DescriptorCache. A slower Redis is skipped rather than waited on.
const DescriptorLookupTimeout = 250 * time.Millisecond

// CacheObserver receives one call per descriptor lookup.
type CacheObserver interface {
	RecordCacheLookup(hit bool)
}

// DescriptorCache decorates a compound.DescriptorEngine with a Redis cache
// keyed on the structure's SMILES text. Concurrent rows with the same SMILES
// share one engine call. Cache failures are logged and the wrapped engine is
// used directly; they never fail a row.
type DescriptorCache struct {
	engine   compound.DescriptorEngine
	cache    Cache
	logger   logging.Logger
	ttl      time.Duration
	observer CacheObserver
}

type DescriptorCacheOption func(*DescriptorCache)

// WithDescriptorTTL sets the entry lifetime.
func WithDescriptorTTL(ttl time.Duration) DescriptorCacheOption {
	return func(d *DescriptorCache) { d.ttl = ttl }
}

// WithCacheObserver reports hits and misses.
func WithCacheObserver(o CacheObserver) DescriptorCacheOption {
	return func(d *DescriptorCache) { d.observer = o }
}

func NewDescriptorCache(engine compound.DescriptorEngine, cache Cache, log logging.Logger, opts ...DescriptorCacheOption) *DescriptorCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	d := &DescriptorCache{
		engine:  engine,
		cache:   cache,
		logger:  log.Named("descriptor_cache"),
		ttl:     7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DescriptorKey is the cache key for a SMILES string.
func DescriptorKey(smiles string) string {
	sum := sha256.Sum256([]byte(smiles))
	return "desc:" + descriptorKeyVersion + ":" + hex.EncodeToString(sum[:])
}

// Compute implements compound.DescriptorEngine. A lookup counts as a hit
// when this call did not run the engine.
func (d *DescriptorCache) Compute(s compound.Structure) (compound.Descriptors, error) {
	if s == nil {
		return d.engine.Compute(s)
	}
	key := DescriptorKey(s.SMILES())

	var (
		out        compound.Descriptors
		computed   bool
		computeErr error
	)
	err := d.cache.GetOrSet(context.Background(), key, &out, d.ttl, func(context.Context) (interface{}, error) {
		computed = true
		desc, err := d.engine.Compute(s)
		computeErr = err
		return desc, err
	})
	d.observe(!computed)
	switch {
	case err == nil:
		return out, nil
	case computed && computeErr != nil:
		return compound.Descriptors{}, computeErr
	}

	d.logger.Warn("Descriptor cache lookup failed", logging.String("smiles", s.SMILES()), logging.Err(err))
	return d.engine.Compute(s)
}

func (d *DescriptorCache) observe(hit bool) {
	if d.observer != nil {
		d.observer.RecordCacheLookup(hit)
	}
}

var _ compound.DescriptorEngine = (*DescriptorCache)(nil)

//Personal.AI order the ending
