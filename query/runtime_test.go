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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intKey struct{ name string }

func (intKey) assetKey()        {}
func (k intKey) String() string { return "int(" + k.name + ")" }

type doubleQuery struct {
	key   string
	asset AssetKey
}

func (q doubleQuery) Key() string { return q.key }

func (q doubleQuery) Eval(ctx *Context) (int, *QueryError) {
	v, err := ctx.Asset(q.asset)
	if err != nil {
		return 0, err
	}
	return v.(int) * 2, nil
}

type countingLogger struct{ calls int }

func (l *countingLogger) Debugf(format string, args ...any) { l.calls++ }

func TestRunSuspendsUntilAssetResolved(t *testing.T) {
	rt := New()
	key := intKey{"a"}
	q := doubleQuery{key: "double:a", asset: key}

	_, err := Run(rt, q)
	require.True(t, IsSuspend(err))
	assert.Contains(t, rt.PendingAssets(), AssetKey(key))

	rt.ResolveAsset(key, 21, Volatile)
	v, err := Run(rt, q)
	require.Nil(t, err)
	assert.Equal(t, 42, v)
	assert.Empty(t, rt.PendingAssets())
}

func TestRunMemoizesResult(t *testing.T) {
	rt := New()
	key := intKey{"b"}
	rt.ResolveAsset(key, 5, Volatile)
	q := doubleQuery{key: "double:b", asset: key}

	v1, err := Run(rt, q)
	require.Nil(t, err)
	rt.ResolveAsset(key, 99, Volatile) // would change the result if re-evaluated
	rt.memos[q.Key()] = memoEntry{value: v1, deps: []AssetKey{key}}
	v2, err := Run(rt, q)
	require.Nil(t, err)
	assert.Equal(t, v1, v2)
}

func TestResolveAssetEvictsDependentMemos(t *testing.T) {
	rt := New()
	key := intKey{"c"}
	rt.ResolveAsset(key, 3, Volatile)
	q := doubleQuery{key: "double:c", asset: key}

	v1, err := Run(rt, q)
	require.Nil(t, err)
	assert.Equal(t, 6, v1)

	rt.ResolveAsset(key, 10, Volatile)
	v2, err := Run(rt, q)
	require.Nil(t, err)
	assert.Equal(t, 20, v2)
}

func TestResolveAssetRejectsLowerDurability(t *testing.T) {
	rt := New()
	key := intKey{"d"}
	rt.ResolveAsset(key, 1, Static)
	rt.ResolveAsset(key, 2, Volatile) // rejected: lower durability than Static

	q := doubleQuery{key: "double:d", asset: key}
	v, err := Run(rt, q)
	require.Nil(t, err)
	assert.Equal(t, 2, v, "Static value 1 kept, so 1*2 == 2")
}

func TestUserErrorPropagates(t *testing.T) {
	rt := New()
	key := intKey{"e"}
	rt.ResolveAssetError(key, assertError("missing"), Volatile)

	q := doubleQuery{key: "double:e", asset: key}
	_, err := Run(rt, q)
	require.NotNil(t, err)
	assert.Equal(t, ErrAssetError, err.Kind)
}

func TestLoggerReceivesTrace(t *testing.T) {
	logger := &countingLogger{}
	rt := New(WithLogger(logger))
	key := intKey{"f"}
	rt.ResolveAsset(key, 1, Volatile)
	assert.Greater(t, logger.calls, 0)
}

type assertError string

func (e assertError) Error() string { return string(e) }
