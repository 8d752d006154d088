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

	"eure.dev/go/errors"
	"eure.dev/go/token"
)

func resolveText(rt *Runtime, file token.FileKey, src string) {
	rt.ResolveAsset(TextFileKey{File: file}, TextFileContent{Content: src}, Volatile)
}

func TestParseCSTQuerySuspendsThenParses(t *testing.T) {
	rt := New()
	file := token.LocalFile("a.eure")

	_, err := Run(rt, ParseCSTQuery{File: file})
	require.True(t, IsSuspend(err))
	assert.Equal(t, TextFileKey{File: file}, err.Asset)

	resolveText(rt, file, "name = \"Alice\"\n")
	res, err := Run(rt, ParseCSTQuery{File: file})
	require.Nil(t, err)
	require.NotNil(t, res.Tree)
	assert.Empty(t, res.Errors)
}

func TestValidCSTQueryRejectsParseErrors(t *testing.T) {
	rt := New()
	file := token.LocalFile("broken.eure")
	resolveText(rt, file, "name = \n")

	_, err := Run(rt, ValidCSTQuery{File: file})
	require.NotNil(t, err)
	assert.Equal(t, ErrUserError, err.Kind)
	require.NotEmpty(t, err.Reports)
}

func TestValidateQueryEndToEnd(t *testing.T) {
	rt := New()
	docFile := token.LocalFile("doc.eure")
	schemaFile := token.LocalFile("schema.eure")
	resolveText(rt, docFile, "name = \"Alice\"\nage = 30\n")
	resolveText(rt, schemaFile, "name.$type = \"text\"\nage.$type = \"integer\"\n")

	errs, err := Run(rt, ValidateQuery{Doc: docFile, Schema: schemaFile})
	require.Nil(t, err)
	assert.Empty(t, errs)
}

func TestValidateQueryReportsTypeMismatch(t *testing.T) {
	rt := New()
	docFile := token.LocalFile("doc.eure")
	schemaFile := token.LocalFile("schema.eure")
	resolveText(rt, docFile, "age = \"thirty\"\n")
	resolveText(rt, schemaFile, "age.$type = \"integer\"\n")

	errs, err := Run(rt, ValidateQuery{Doc: docFile, Schema: schemaFile})
	require.Nil(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.TypeMismatch, errs[0].Kind)
}

func TestFileDiagnosticsCollectsParseErrors(t *testing.T) {
	rt := New()
	file := token.LocalFile("broken.eure")
	resolveText(rt, file, "name = \nage = 30\n")

	diags, err := Run(rt, FileDiagnosticsQuery{Doc: file})
	require.Nil(t, err)
	require.NotEmpty(t, diags)
}

func TestFileDiagnosticsIncludesValidation(t *testing.T) {
	rt := New()
	docFile := token.LocalFile("doc.eure")
	schemaFile := token.LocalFile("schema.eure")
	resolveText(rt, docFile, "age = \"thirty\"\n")
	resolveText(rt, schemaFile, "age.$type = \"integer\"\n")

	diags, err := Run(rt, FileDiagnosticsQuery{Doc: docFile, Schema: schemaFile})
	require.Nil(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.TypeMismatch, diags[0].Kind)
}

func TestFileDiagnosticsEmptyOnCleanFile(t *testing.T) {
	rt := New()
	file := token.LocalFile("clean.eure")
	resolveText(rt, file, "name = \"Alice\"\n")

	diags, err := Run(rt, FileDiagnosticsQuery{Doc: file})
	require.Nil(t, err)
	assert.Empty(t, diags)
}

// Resolving the document asset again must evict the whole downstream
// chain, including queries that only read the file through nested
// sub-queries.
func TestNestedQueryEvictionOnReResolve(t *testing.T) {
	rt := New()
	docFile := token.LocalFile("doc.eure")
	schemaFile := token.LocalFile("schema.eure")
	resolveText(rt, docFile, "age = 30\n")
	resolveText(rt, schemaFile, "age.$type = \"integer\"\nage.max = 100\n")

	errs, err := Run(rt, ValidateQuery{Doc: docFile, Schema: schemaFile})
	require.Nil(t, err)
	assert.Empty(t, errs)

	resolveText(rt, docFile, "age = 300\n")
	errs, err = Run(rt, ValidateQuery{Doc: docFile, Schema: schemaFile})
	require.Nil(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.RangeViolation, errs[0].Kind)
}

func TestFileDiagnosticsTruncatesAtMaxErrors(t *testing.T) {
	rt := New(WithMaxErrorsPerFile(1))
	file := token.LocalFile("broken.eure")
	resolveText(rt, file, "a = \nb = \nc = \n")

	diags, err := Run(rt, FileDiagnosticsQuery{Doc: file})
	require.Nil(t, err)
	assert.Len(t, diags, 1)
}
