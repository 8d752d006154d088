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

package query

// Context is passed to a query body during evaluation. It is the
// only way a query may read an asset, call another query, or list
// asset keys; nothing else is permitted to block.
type Context struct {
	rt    *Runtime
	deps  []AssetKey
	depth int
}

// Asset reads key's resolved value, recording it as a dependency of
// the enclosing query. If key has not been resolved yet, Asset
// records it as pending and returns Suspend(key); the query body
// should propagate that error unchanged.
func (c *Context) Asset(key AssetKey) (any, *QueryError) {
	c.rt.mu.Lock()
	e, ok := c.rt.assets[key]
	if !ok {
		c.rt.pending[key] = struct{}{}
	}
	c.rt.mu.Unlock()
	if !ok {
		return nil, Suspend(key)
	}
	c.deps = append(c.deps, key)
	if e.err != nil {
		return nil, &QueryError{Kind: ErrAssetError, Asset: key, Err: e.err}
	}
	return e.value, nil
}

// ListAssetKeys snapshots every currently-known asset key whose
// resolved value has type T. Go's
// lack of generic methods means this is a package function rather
// than a Context method.
func ListAssetKeys[T any](c *Context) []AssetKey {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	var out []AssetKey
	for k, e := range c.rt.assets {
		if _, ok := e.value.(T); ok {
			out = append(out, k)
		}
	}
	return out
}

// Nested runs q as a sub-query of the one currently evaluating in c,
// enforcing the recursion limit and returning a memoised result when
// one exists for the runtime's current epoch. The sub-query's asset
// reads are folded into the caller's recorded inputs so that
// invalidating any of them also evicts the caller's memo.
func Nested[T any](c *Context, q Query[T]) (T, *QueryError) {
	v, deps, err := run(c.rt, q, c.depth+1)
	c.deps = append(c.deps, deps...)
	return v, err
}
