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

package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eure.dev/go/cst"
	"eure.dev/go/errors"
	"eure.dev/go/token"
)

func setup(t *testing.T, src string) (token.FileKey, *token.FileSet, *FileRegistry) {
	t.Helper()
	key := token.LocalFile("schema.eure")
	fs := token.NewFileSet()
	f := fs.AddFile(key, len(src))
	res := cst.ParseTolerant(f, []byte(src))
	require.NotNil(t, res.Tree)
	reg := NewFileRegistry(fs)
	reg.AddSource(key, []byte(src))
	return key, fs, reg
}

func TestPrintPrimarySpanAnnotation(t *testing.T) {
	src := "age = \"thirty\"\n"
	key, _, reg := setup(t, src)
	start := strings.Index(src, "\"thirty\"")
	e := errors.Newf(errors.TypeMismatch, token.Origin{File: key, Span: token.Span{Start: start, End: start + len("\"thirty\"")}}, "expected integer, found text").WithPath("age")

	var b strings.Builder
	Print(&b, errors.List{e}, &Config{Files: reg})
	out := b.String()

	assert.Contains(t, out, "TypeMismatch")
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "expected integer, found text")
	assert.Contains(t, out, "schema.eure:1:7")
	assert.Contains(t, out, "age = \"thirty\"")
	assert.Contains(t, out, "^")
}

func TestPrintSecondaryAnnotation(t *testing.T) {
	src := "age = 1\n"
	key, _, reg := setup(t, src)
	e := errors.Newf(errors.RangeViolation, token.Origin{File: key, Span: token.Span{Start: 6, End: 7}}, "out of range").
		WithRelated(token.Origin{File: key, Span: token.Span{Start: 0, End: 3}})

	var b strings.Builder
	Print(&b, errors.List{e}, &Config{Files: reg})
	out := b.String()

	assert.Contains(t, out, "related:")
}

func TestPrintEmptySpanKnownFileSkipsCaret(t *testing.T) {
	src := "age = 1\n"
	key, _, reg := setup(t, src)
	e := errors.Newf(errors.RequiredFieldMissing, token.Origin{File: key}, "missing field")

	var b strings.Builder
	Print(&b, errors.List{e}, &Config{Files: reg})
	out := b.String()

	assert.Contains(t, out, "schema.eure")
	assert.NotContains(t, out, "^")
}

func TestPrintSortsByFileAndStart(t *testing.T) {
	src := "a = 1\nb = 2\n"
	key, _, reg := setup(t, src)
	e1 := errors.Newf(errors.TypeMismatch, token.Origin{File: key, Span: token.Span{Start: 6, End: 7}}, "second")
	e2 := errors.Newf(errors.TypeMismatch, token.Origin{File: key, Span: token.Span{Start: 0, End: 1}}, "first")

	var b strings.Builder
	Print(&b, errors.List{e1, e2}, &Config{Files: reg})
	out := b.String()

	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

func TestPrintStyledAddsEscapeCodes(t *testing.T) {
	src := "age = 1\n"
	key, _, reg := setup(t, src)
	e := errors.Newf(errors.TypeMismatch, token.Origin{File: key, Span: token.Span{Start: 0, End: 3}}, "bad")

	var plain, styled strings.Builder
	Print(&plain, errors.List{e}, &Config{Files: reg})
	Print(&styled, errors.List{e}, &Config{Files: reg, Color: true})

	assert.NotEqual(t, plain.String(), styled.String())
	assert.Contains(t, styled.String(), "\x1b[")
}

func TestDetailsReturnsString(t *testing.T) {
	key, _, reg := setup(t, "age = 1\n")
	e := errors.Newf(errors.TypeMismatch, token.Origin{File: key, Span: token.Span{Start: 0, End: 3}}, "bad")
	out := Details(errors.List{e}, &Config{Files: reg})
	assert.Contains(t, out, "bad")
}
