// Copyright 2026 The EURE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query implements a keyed, memoised, suspension-capable
// evaluator: a single-threaded cooperative runtime over Query[T]
// values, fed by host-resolved asset keys.
package query

import (
	"sync"

	"github.com/google/uuid"
)

// RunEpoch identifies one generation of the runtime's memo table. It
// is minted from uuid rather than an incrementing counter so two
// runtimes never share an epoch.
type RunEpoch uuid.UUID

func newEpoch() RunEpoch { return RunEpoch(uuid.New()) }

func (e RunEpoch) String() string { return uuid.UUID(e).String() }

// Logger receives runtime trace messages; a nil Logger is a no-op.
type Logger interface {
	Debugf(format string, args ...any)
}

// Config tunes a Runtime.
type Config struct {
	RecursionLimit    int
	MaxErrorsPerFile  int
	DefaultDurability Durability
	Logger            Logger
}

// Option configures a Config, mirroring cue/parser's functional-
// options idiom (parser.Option / parser.mode).
type Option func(*Config)

// WithRecursionLimit bounds nested ctx.query depth.
func WithRecursionLimit(n int) Option { return func(c *Config) { c.RecursionLimit = n } }

// WithMaxErrorsPerFile bounds how many reports a single file
// contributes to a batch.
func WithMaxErrorsPerFile(n int) Option { return func(c *Config) { c.MaxErrorsPerFile = n } }

// WithDefaultDurability sets the durability assumed for assets
// resolved without an explicit level.
func WithDefaultDurability(d Durability) Option {
	return func(c *Config) { c.DefaultDurability = d }
}

// WithLogger attaches a trace logger.
func WithLogger(l Logger) Option { return func(c *Config) { c.Logger = l } }

func newConfig(opts ...Option) Config {
	cfg := Config{RecursionLimit: 100, MaxErrorsPerFile: 100, DefaultDurability: Volatile}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type assetEntry struct {
	value      any
	err        error
	durability Durability
}

type memoEntry struct {
	value any
	err   error
	deps  []AssetKey
}

// Runtime is a process-wide, single-threaded-cooperative query
// evaluator. Its mutex guards bookkeeping only; query bodies
// themselves never run concurrently — queries run on the caller's
// thread.
type Runtime struct {
	mu      sync.Mutex
	cfg     Config
	epoch   RunEpoch
	assets  map[AssetKey]assetEntry
	pending map[AssetKey]struct{}
	memos   map[string]memoEntry
}

// New creates a Runtime at a fresh epoch.
func New(opts ...Option) *Runtime {
	return &Runtime{
		cfg:     newConfig(opts...),
		epoch:   newEpoch(),
		assets:  make(map[AssetKey]assetEntry),
		pending: make(map[AssetKey]struct{}),
		memos:   make(map[string]memoEntry),
	}
}

func (rt *Runtime) logf(format string, args ...any) {
	if rt.cfg.Logger != nil {
		rt.cfg.Logger.Debugf(format, args...)
	}
}

// Epoch returns the runtime's current run epoch.
func (rt *Runtime) Epoch() RunEpoch { return rt.epoch }

// ResolveAsset supplies a value for key at durability d. A resolution
// at a lower durability than the one already on record is rejected;
// otherwise the value
// replaces the prior one and every memo that read key is evicted.
func (rt *Runtime) ResolveAsset(key AssetKey, value any, d Durability) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.resolveLocked(key, assetEntry{value: value, durability: d})
}

// ResolveAssetError records that key cannot be supplied.
func (rt *Runtime) ResolveAssetError(key AssetKey, err error, d Durability) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.resolveLocked(key, assetEntry{err: err, durability: d})
}

func (rt *Runtime) resolveLocked(key AssetKey, e assetEntry) {
	if prior, ok := rt.assets[key]; ok && e.durability < prior.durability {
		rt.logf("query: rejected resolution of %s at %s (prior %s)", key, e.durability, prior.durability)
		return
	}
	rt.assets[key] = e
	delete(rt.pending, key)
	rt.evictDependents(key)
	rt.logf("query: resolved %s at %s", key, e.durability)
}

// evictDependents removes every memo that read key. Must be called
// with rt.mu held.
func (rt *Runtime) evictDependents(key AssetKey) {
	for qk, m := range rt.memos {
		for _, d := range m.deps {
			if d == key {
				delete(rt.memos, qk)
				rt.logf("query: evicted memo %s (depends on %s)", qk, key)
				break
			}
		}
	}
}

// PendingAssets enumerates keys that queries are currently waiting
// on.
func (rt *Runtime) PendingAssets() []AssetKey {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]AssetKey, 0, len(rt.pending))
	for k := range rt.pending {
		out = append(out, k)
	}
	return out
}

// Query is a hashable, memoisable computation over the runtime. Key
// must uniquely identify the query's identity and arguments within
// one runtime; the memo table is scoped to a runtime epoch.
type Query[T any] interface {
	Key() string
	Eval(ctx *Context) (T, *QueryError)
}

// Run evaluates q, returning a memoised result if one is cached.
// Suspended evaluations are never memoised: the caller re-drives the
// query (by calling Run again) once the host has resolved the
// pending asset.
func Run[T any](rt *Runtime, q Query[T]) (T, *QueryError) {
	v, _, err := run(rt, q, 0)
	return v, err
}

// run also reports the asset keys the evaluation read (from the memo
// on a hit), so Nested can fold a sub-query's reads into its caller's
// recorded inputs: invalidation must reach every transitive reader,
// not just the query that touched the asset directly.
func run[T any](rt *Runtime, q Query[T], depth int) (T, []AssetKey, *QueryError) {
	var zero T
	if depth > rt.cfg.RecursionLimit {
		return zero, nil, &QueryError{Kind: ErrRecursionLimit}
	}
	key := q.Key()

	rt.mu.Lock()
	if m, ok := rt.memos[key]; ok {
		rt.mu.Unlock()
		if m.err != nil {
			return zero, m.deps, m.err.(*QueryError)
		}
		v, _ := m.value.(T)
		return v, m.deps, nil
	}
	rt.mu.Unlock()

	ctx := &Context{rt: rt, depth: depth}
	v, qerr := q.Eval(ctx)
	if IsSuspend(qerr) {
		return zero, nil, qerr
	}

	rt.mu.Lock()
	rt.memos[key] = memoEntry{value: v, err: asErr(qerr), deps: ctx.deps}
	rt.mu.Unlock()
	rt.logf("query: evaluated %s (%d asset deps)", key, len(ctx.deps))
	return v, ctx.deps, qerr
}

func asErr(q *QueryError) error {
	if q == nil {
		return nil
	}
	return q
}
