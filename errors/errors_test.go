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

package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eure.dev/go/token"
)

func origin(file string, start, end int) token.Origin {
	return token.Origin{File: token.LocalFile(file), Span: token.Span{Start: start, End: end}}
}

func TestListSortOrdersByFileThenOffset(t *testing.T) {
	var l List
	l.AddNewf(TypeMismatch, origin("b.eure", 5, 6), "b first")
	l.AddNewf(TypeMismatch, origin("a.eure", 10, 11), "a second")
	l.AddNewf(TypeMismatch, origin("a.eure", 1, 2), "a first")

	l.Sort()

	require.Len(t, l, 3)
	assert.Equal(t, "a first", l[0].Error())
	assert.Equal(t, "a second", l[1].Error())
	assert.Equal(t, "b first", l[2].Error())
}

func TestSanitizeDropsExactDuplicates(t *testing.T) {
	var l List
	o := origin("a.eure", 0, 1)
	l.Add(Newf(AlreadyAssigned, o, "dup"))
	l.Add(Newf(AlreadyAssigned, o, "dup"))
	l.Add(Newf(AlreadyAssigned, o, "distinct"))

	out := l.Sanitize()
	assert.Len(t, out, 2)
}

func TestCoreErrorWithRelatedAndPath(t *testing.T) {
	e := Newf(TypeMismatch, origin("a.eure", 0, 3), "expected %s, got %s", "integer", "text")
	e = e.WithRelated(origin("schema.eure", 4, 5)).WithPath("foo", "bar")

	require.NotNil(t, e.Related)
	assert.Equal(t, []string{"foo", "bar"}, e.Path)
	assert.Equal(t, "expected integer, got text", e.Error())
}

func TestJoin(t *testing.T) {
	var a, b List
	a.AddNewf(UnexpectedToken, origin("a.eure", 0, 1), "a")
	b.AddNewf(UnexpectedToken, origin("b.eure", 0, 1), "b")
	out := Join(a, b)
	assert.Len(t, out, 2)
}
