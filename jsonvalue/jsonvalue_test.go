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

package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eure.dev/go/cst"
	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/token"
)

func buildSrc(t *testing.T, src string) *document.Document {
	t.Helper()
	f := token.NewFile(token.LocalFile("t.eure"), len(src))
	res := cst.ParseTolerant(f, []byte(src))
	require.Empty(t, res.Errors, "unexpected parse errors for %q", src)
	doc, errs := document.Build(res.Tree)
	require.Empty(t, errs)
	return doc
}

// Exact field order round-trips through the
// projection and into the marshaled bytes.
func TestMarshalFlatBindingsPreservesOrder(t *testing.T) {
	doc := buildSrc(t, "name = \"Alice\"\nage = 30\n")
	b, err := Marshal(doc, doc.Root)
	require.Nil(t, err)
	assert.Equal(t, `{"name":"Alice","age":30}`, string(b))
}

func TestProjectNestedMapsAndArrays(t *testing.T) {
	doc := buildSrc(t, "address = { city = \"Metropolis\", tags = [\"a\", \"b\"] }\n")
	v, err := Project(doc, doc.Root)
	require.Nil(t, err)
	obj, ok := v.(*Object)
	require.True(t, ok)
	addr, ok := obj.Get("address")
	require.True(t, ok)
	addrObj, ok := addr.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"city", "tags"}, addrObj.Keys())
	city, _ := addrObj.Get("city")
	assert.Equal(t, "Metropolis", city)
	tags, _ := addrObj.Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)
}

func TestProjectTuple(t *testing.T) {
	doc := buildSrc(t, "point = (1, 2)\n")
	v, err := Project(doc, doc.Root)
	require.Nil(t, err)
	obj := v.(*Object)
	point, _ := obj.Get("point")
	arr, ok := point.([]any)
	require.True(t, ok)
	require.Len(t, arr, 2)
}

func TestProjectHoleFails(t *testing.T) {
	doc := buildSrc(t, "name = !\n")
	_, err := Project(doc, doc.Root)
	require.NotNil(t, err)
	assert.Equal(t, errors.CannotProjectHole, err.Kind)
}

func TestProjectNestedHoleFails(t *testing.T) {
	doc := buildSrc(t, "address = { city = !, zip = \"0\" }\n")
	_, err := Project(doc, doc.Root)
	require.NotNil(t, err)
	assert.Equal(t, errors.CannotProjectHole, err.Kind)
}

func TestProjectArbitraryPrecisionInteger(t *testing.T) {
	doc := buildSrc(t, "big = 123456789012345678901234567890\n")
	v, err := Project(doc, doc.Root)
	require.Nil(t, err)
	obj := v.(*Object)
	big, _ := obj.Get("big")
	n, ok := big.(interface{ String() string })
	require.True(t, ok)
	assert.Equal(t, "123456789012345678901234567890", n.String())
}

func TestProjectAnnotatedReportsTextLanguage(t *testing.T) {
	doc := buildSrc(t, "greeting = `hello`\n")
	var gotPath []string
	var gotLang document.Language
	_, err := ProjectAnnotated(doc, doc.Root, func(path []string, lang document.Language, langName string) {
		gotPath = path
		gotLang = lang
	})
	require.Nil(t, err)
	assert.Equal(t, []string{"greeting"}, gotPath)
	assert.Equal(t, document.LangImplicit, gotLang)
}

func TestMarshalIndent(t *testing.T) {
	doc := buildSrc(t, "name = \"Alice\"\n")
	b, err := MarshalIndent(doc, doc.Root, "", "  ")
	require.Nil(t, err)
	assert.Equal(t, "{\n  \"name\": \"Alice\"\n}", string(b))
}

func TestObjectSetOverwritePreservesPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", 1)
	o.Set("b", 2)
	o.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, o.Keys())
	v, _ := o.Get("a")
	assert.Equal(t, 3, v)
}
