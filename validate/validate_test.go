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

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eure.dev/go/cst"
	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/schema"
	"eure.dev/go/token"
)

// build parses schemaSrc and dataSrc and validates the data document
// against the compiled schema.
func build(t *testing.T, schemaSrc, dataSrc string) errors.List {
	t.Helper()
	sf := token.NewFile(token.LocalFile("schema.eure"), len(schemaSrc))
	sres := cst.ParseTolerant(sf, []byte(schemaSrc))
	require.Empty(t, sres.Errors)
	sdoc, serrs := document.Build(sres.Tree)
	require.Empty(t, serrs)
	sch, lerrs := schema.Load(sdoc)
	require.Empty(t, lerrs)

	df := token.NewFile(token.LocalFile("data.eure"), len(dataSrc))
	dres := cst.ParseTolerant(df, []byte(dataSrc))
	require.Empty(t, dres.Errors)
	ddoc, derrs := document.Build(dres.Tree)
	require.Empty(t, derrs)

	return Document(ddoc, sch)
}

func TestValidatePrimitiveOK(t *testing.T) {
	errs := build(t, "name.$type = \"text\"\nage.$type = \"integer\"\n", "name = \"Alice\"\nage = 30\n")
	assert.Empty(t, errs)
}

func TestValidateTypeMismatch(t *testing.T) {
	errs := build(t, "age.$type = \"integer\"\n", "age = \"thirty\"\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.TypeMismatch, errs[0].Kind)
}

func TestValidateRangeViolation(t *testing.T) {
	errs := build(t, "age.$type = \"integer\"\nage.min = 0\nage.max = 120\n", "age = 200\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.RangeViolation, errs[0].Kind)
}

func TestValidateLengthViolation(t *testing.T) {
	errs := build(t, "name.$type = \"text\"\nname.length.min = 3\n", "name = \"ab\"\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.LengthViolation, errs[0].Kind)
}

func TestValidatePatternMismatch(t *testing.T) {
	errs := build(t, "code.$type = \"text\"\ncode.pattern = \"^[A-Z]+$\"\n", "code = \"abc\"\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.PatternMismatch, errs[0].Kind)
}

func TestValidateArrayLengthAndUnique(t *testing.T) {
	errs := build(t,
		"tags.$type = [\"text\"]\ntags.min-items = 2\ntags.unique = true\n",
		"tags = [\"a\", \"a\"]\n")
	require.Len(t, errs, 2)
	kinds := []errors.Kind{errs[0].Kind, errs[1].Kind}
	assert.Contains(t, kinds, errors.ArrayLengthViolation)
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	errs := build(t, "name.$type = \"text\"\n", "other = \"x\"\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.RequiredFieldMissing, errs[0].Kind)
}

func TestValidateOptionalFieldMayBeAbsent(t *testing.T) {
	errs := build(t, "name.$type = \"text\"\nname.$optional = true\n", "other = 1\n")
	assert.Empty(t, errs)
}

func TestValidateUnexpectedFieldDenied(t *testing.T) {
	errs := build(t, "$unknown-fields = \"deny\"\nname.$type = \"text\"\n", "name = \"a\"\nextra = 1\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.UnexpectedField, errs[0].Kind)
}

func TestValidateNestedRecord(t *testing.T) {
	errs := build(t,
		"address = { city.$type = \"text\", zip.$type = \"text\" }\n",
		"address = { city = \"Metropolis\", zip = \"00000\" }\n")
	assert.Empty(t, errs)
}

func TestValidateNestedRecordPathInError(t *testing.T) {
	errs := build(t,
		"address = { city.$type = \"text\" }\n",
		"address = { city = 1 }\n")
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"address", "city"}, errs[0].Path)
}

func TestValidateExternalUnion(t *testing.T) {
	// An empty $variant-repr map names neither tag nor content, which
	// selects the external representation.
	schemaSrc := "shape.$variant-repr = {}\nshape.circle = { radius.$type = \"float\" }\nshape.square = { side.$type = \"float\" }\n"
	errs := build(t, schemaSrc, "shape = { circle = { radius = 1.5 } }\n")
	assert.Empty(t, errs)

	errs = build(t, schemaSrc, "shape = { triangle = { base = 1.0 } }\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.UnknownVariant, errs[0].Kind)
}

func TestValidateInternalTaggedUnion(t *testing.T) {
	schemaSrc := "event.$variant-repr = { tag = \"kind\" }\nevent.click = { x.$type = \"integer\" }\nevent.scroll = { dy.$type = \"integer\" }\n"
	errs := build(t, schemaSrc, "event = { kind = \"click\", x = 10 }\n")
	assert.Empty(t, errs)
}

// A "$"-prefixed tag name addresses the value's extensions, since a
// "$" binding can only ever land there: action = { $variant = "Move",
// dx = 1 } resolves to the Move variant with no errors.
func TestValidateInternalUnionExtensionTag(t *testing.T) {
	schemaSrc := "action.$variant-repr = { tag = \"$variant\" }\naction.Move = { dx.$type = \"integer\" }\naction.Stop = {}\n"
	errs := build(t, schemaSrc, "action = { $variant = \"Move\", dx = 1 }\n")
	assert.Empty(t, errs)

	errs = build(t, schemaSrc, "action = { dx = 1 }\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.VariantDiscriminatorMissing, errs[0].Kind)
}

func TestValidateAdjacentUnionExtensionTagAndContent(t *testing.T) {
	schemaSrc := "event.$variant-repr = { tag = \"$kind\", content = \"$data\" }\nevent.click = { x.$type = \"integer\" }\n"
	errs := build(t, schemaSrc, "event = { $kind = \"click\", $data = { x = 5 } }\n")
	assert.Empty(t, errs)
}

func TestValidateAdjacentTaggedUnion(t *testing.T) {
	schemaSrc := "event.$variant-repr = { tag = \"kind\", content = \"data\" }\nevent.click = { x.$type = \"integer\" }\n"
	errs := build(t, schemaSrc, "event = { kind = \"click\", data = { x = 5 } }\n")
	assert.Empty(t, errs)

	errs = build(t, schemaSrc, "event = { kind = \"click\", data = { x = 5 }, extra = true }\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.UnexpectedField, errs[0].Kind)
}

func TestValidateUntaggedUnionUnambiguous(t *testing.T) {
	schemaSrc := "shape.$variant-repr = \"untagged\"\nshape.circle = { radius.$type = \"float\" }\nshape.square = { side.$type = \"float\" }\n"
	errs := build(t, schemaSrc, "shape = { radius = 2.0 }\n")
	assert.Empty(t, errs)

	errs = build(t, schemaSrc, "shape = { side = 2.0 }\n")
	assert.Empty(t, errs)
}

func TestValidateUntaggedUnionNoVariantMatched(t *testing.T) {
	schemaSrc := "shape.$variant-repr = \"untagged\"\nshape.circle = { radius.$type = \"float\" }\nshape.square = { side.$type = \"float\" }\n"
	errs := build(t, schemaSrc, "shape = { unknown = 1 }\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.NoVariantMatched, errs[0].Kind)
}

// An author-written hole is still a missing value: it does not
// satisfy a concrete schema kind, and the error points at the hole.
func TestValidateHoleIsTypeMismatch(t *testing.T) {
	errs := build(t, "age.$type = \"integer\"\n", "age = !\n")
	require.Len(t, errs, 1)
	assert.Equal(t, errors.TypeMismatch, errs[0].Kind)
	assert.False(t, errs[0].Origin.Span.IsEmpty())
}

func TestValidateAnySchemaAcceptsAnything(t *testing.T) {
	errs := build(t, "blob.$type = \"any\"\n", "blob = { a = 1, b = [\"x\"] }\n")
	assert.Empty(t, errs)
}
