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

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyLocalVsRemote(t *testing.T) {
	local := LocalFile("a.eure")
	remote := RemoteFile("https://example.com/a.eure")

	assert.True(t, local.IsLocal())
	assert.False(t, local.IsRemote())
	assert.True(t, remote.IsRemote())
	assert.NotEqual(t, local, remote)
	assert.Equal(t, LocalFile("a.eure"), local)
}

func TestFilePosition(t *testing.T) {
	src := "one\ntwo\nthree"
	f := NewFile(LocalFile("f.eure"), len(src))
	for i, c := range src {
		if c == '\n' {
			f.AddLine(i + 1)
		}
	}

	p := f.Position(0)
	require.True(t, p.IsValid())
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 1, p.Column)

	p = f.Position(4) // 't' of "two"
	assert.Equal(t, 2, p.Line)
	assert.Equal(t, 1, p.Column)

	p = f.Position(8) // 't' of "three"
	assert.Equal(t, 3, p.Line)
	assert.Equal(t, 1, p.Column)
}

func TestSpanCover(t *testing.T) {
	a := Span{Start: 2, End: 5}
	b := Span{Start: 10, End: 12}
	got := a.Cover(b)
	assert.Equal(t, Span{Start: 2, End: 12}, got)
	assert.Equal(t, 3, a.Len())
	assert.False(t, a.IsEmpty())
	assert.True(t, Span{Start: 4, End: 4}.IsEmpty())
}

func TestFileSet(t *testing.T) {
	fs := NewFileSet()
	k := LocalFile("x.eure")
	f := fs.AddFile(k, 10)
	assert.Same(t, f, fs.File(k))

	o := Origin{File: k, Span: Span{Start: 1, End: 2}}
	p := fs.Position(o)
	assert.True(t, p.IsValid())
}
