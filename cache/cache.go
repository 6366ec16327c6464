// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/gogpu/mslconv/conv"
	"github.com/gogpu/mslconv/internal/logging"
	"github.com/gogpu/mslconv/shader"
)

// State is the lifecycle state of a cache entry.
type State uint8

const (
	StateAbsent State = iota
	StateInFlight
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateInFlight:
		return "in-flight"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// CompileFunc translates cfg. It may set the UsedByShader flags of cfg and
// must not retain it.
type CompileFunc func(ctx context.Context, cfg *conv.Configuration) (*conv.Result, error)

// Options configures a Cache.
type Options struct {
	// Capacity bounds the number of entries. Zero means unbounded.
	Capacity int

	// CompilerVersion and Platform are the compatibility values checked
	// against persisted records and merged caches.
	CompilerVersion conv.CompilerVersion
	Platform        conv.Platform

	Logger *slog.Logger
}

// Stats counts cache events.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Coalesced uint64
	Compiles  uint64
	Evictions uint64
	Stale     uint64
}

// bucketKey groups the entries of one module translated with one set of
// options.
type bucketKey struct {
	module  shader.Key
	options uint64
}

type entry struct {
	key    bucketKey
	config *conv.Configuration
	state  State
	result *conv.Result
	err    error
	done   chan struct{}
	node   *lruNode[*entry]
}

// Cache is a bounded store of translated variants. It is safe for
// concurrent use and must not be copied.
type Cache struct {
	mu       sync.Mutex
	buckets  map[bucketKey][]*entry
	lru      *lruList[*entry]
	capacity int
	compat   conv.Options
	logger   *slog.Logger
	stats    Stats
}

// New returns an empty cache.
func New(opts Options) *Cache {
	return &Cache{
		buckets:  make(map[bucketKey][]*entry),
		lru:      newLRUList[*entry](),
		capacity: opts.Capacity,
		compat: conv.Options{
			CompilerVersion: opts.CompilerVersion,
			Platform:        opts.Platform,
		},
		logger: logging.OrNop(opts.Logger),
	}
}

func keyOf(module shader.Key, opts conv.Options) bucketKey {
	return bucketKey{module: module, options: xxhash.Sum64(appendOptions(nil, opts))}
}

// LookupOrCompile returns the translation of module under cfg.
//
// A finished entry matching cfg is returned at once and cfg takes its usage
// flags. If an equivalent configuration is being translated, the call waits
// for it. Otherwise compile runs once for cfg while later callers wait.
//
// Cancelling ctx stops the wait only. A compile that has started runs to
// completion and its result is stored.
func (c *Cache) LookupOrCompile(ctx context.Context, module shader.Key, cfg *conv.Configuration, compile CompileFunc) (*conv.Result, error) {
	key := keyOf(module, cfg.Options)

	c.mu.Lock()
	for _, e := range c.buckets[key] {
		switch e.state {
		case StateReady:
			if !e.config.Matches(cfg) {
				continue
			}
			c.stats.Hits++
			c.lru.MoveToFront(e.node)
			c.mu.Unlock()
			c.logger.Debug("shader cache hit", "module", module, "entry", cfg.Options.EntryPoint, "stage", cfg.Options.Stage)
			cfg.AlignWith(e.config)
			return e.result, nil
		case StateInFlight:
			if !e.config.Equivalent(cfg) {
				continue
			}
			c.stats.Coalesced++
			c.mu.Unlock()
			return wait(ctx, e, cfg)
		}
	}

	c.stats.Misses++
	e := &entry{
		key:    key,
		config: cfg.Clone(),
		state:  StateInFlight,
		done:   make(chan struct{}),
	}
	c.insert(e)
	c.evict()
	c.mu.Unlock()
	c.logger.Debug("shader cache miss", "module", module, "entry", cfg.Options.EntryPoint, "stage", cfg.Options.Stage)

	go c.run(context.WithoutCancel(ctx), e, compile)
	return wait(ctx, e, cfg)
}

// run translates a private copy of e.config and publishes the outcome to
// the waiters of e. e.config is read by lookups while the entry is in
// flight, so the annotated copy replaces it only under c.mu.
func (c *Cache) run(ctx context.Context, e *entry, compile CompileFunc) {
	c.mu.Lock()
	cfg := e.config.Clone()
	c.mu.Unlock()

	result, err := safeCompile(ctx, cfg, compile)
	if err == nil && result == nil {
		err = errors.New("compile returned no result")
	}
	var ce *conv.Error
	if err != nil && !errors.As(err, &ce) {
		err = conv.NewTranslationError(cfg.Options.Stage, cfg.Options.EntryPoint, "", err)
	}

	c.mu.Lock()
	c.stats.Compiles++
	if err != nil {
		e.state, e.err = StateFailed, err
		c.remove(e)
	} else {
		e.state, e.result, e.config = StateReady, result, cfg
	}
	close(e.done)
	c.evict()
	c.mu.Unlock()
}

func safeCompile(ctx context.Context, cfg *conv.Configuration, compile CompileFunc) (result *conv.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.Errorf("compile panicked: %v", r)
		}
	}()
	return compile(ctx, cfg)
}

// wait blocks until e leaves the in-flight state or ctx is done. The fields
// read after done is closed are no longer written.
func wait(ctx context.Context, e *entry, cfg *conv.Configuration) (*conv.Result, error) {
	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.state == StateFailed {
		return nil, e.err
	}
	cfg.AlignWith(e.config)
	return e.result, nil
}

func (c *Cache) insert(e *entry) {
	c.buckets[e.key] = append(c.buckets[e.key], e)
	e.node = c.lru.PushFront(e)
}

func (c *Cache) remove(e *entry) {
	c.lru.Remove(e.node)
	e.node = nil
	bucket := c.buckets[e.key]
	for i, o := range bucket {
		if o == e {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(c.buckets, e.key)
	} else {
		c.buckets[e.key] = bucket
	}
}

// evict drops the least recently used finished entries until the cache is
// within capacity. In-flight entries are skipped.
func (c *Cache) evict() {
	if c.capacity <= 0 {
		return
	}
	node := c.lru.Back()
	for c.lru.Len() > c.capacity && node != nil {
		prev := node.prev
		if e := node.key; e.state != StateInFlight {
			c.remove(e)
			c.stats.Evictions++
			c.logger.Debug("shader cache evict", "module", e.key.module, "entry", e.config.Options.EntryPoint)
		}
		node = prev
	}
}

// Len returns the number of entries, in flight or finished.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the entry bound, or zero when unbounded.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Clear drops every finished entry. In-flight translations complete and
// are stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for node := c.lru.Back(); node != nil; {
		prev := node.prev
		if node.key.state != StateInFlight {
			c.remove(node.key)
		}
		node = prev
	}
}

// Merge adopts the finished entries of other that no entry of c already
// matches. Entries of other built for a different compiler or platform are
// skipped. other is not modified.
func (c *Cache) Merge(other *Cache) {
	if other == c {
		return
	}
	other.mu.Lock()
	var adopted []*entry
	for node := other.lru.Back(); node != nil; node = node.prev {
		if e := node.key; e.state == StateReady {
			adopted = append(adopted, e)
		}
	}
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range adopted {
		c.adopt(e.key.module, e.config, e.result)
	}
	c.evict()
}

// adopt stores a finished translation unless it is incompatible with c or
// an existing entry already serves cfg. It reports whether cfg was stored.
// c.mu must be held.
func (c *Cache) adopt(module shader.Key, cfg *conv.Configuration, result *conv.Result) bool {
	if !cfg.Options.Compatible(c.compat) {
		c.stats.Stale++
		c.logger.Debug("shader cache skip", "module", module, "err", conv.NewCacheConsistencyError(cfg.Options, c.compat))
		return false
	}
	key := keyOf(module, cfg.Options)
	for _, e := range c.buckets[key] {
		if e.state == StateReady && e.config.Matches(cfg) {
			return false
		}
	}
	c.insert(&entry{
		key:    key,
		config: cfg.Clone(),
		state:  StateReady,
		result: result,
	})
	return true
}
