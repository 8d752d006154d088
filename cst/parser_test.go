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

package cst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eure.dev/go/errors"
	"eure.dev/go/token"
)

func parse(t *testing.T, src string) ParseResult {
	t.Helper()
	f := token.NewFile(token.LocalFile("t.eure"), len(src))
	return ParseTolerant(f, []byte(src))
}

// TestRoundTripByteExact is the primary CST invariant: for any
// source, Print(ParseTolerant(source).Tree) reproduces it exactly.
func TestRoundTripByteExact(t *testing.T) {
	sources := []string{
		"",
		"# just a comment\n",
		"name = \"Alice\"\nage = 30\n",
		"a.b.c = 1\na.b.d = 2\n",
		"@ items[]\nname = \"A\"\n@ items[]\nname = \"B\"\n",
		"x = { a = 1, b = 2 }\n",
		"y = [1, 2, 3,]\n",
		"z = (1, \"two\", true)\n",
		"v = !\nw = !todo\n",
	}
	for _, src := range sources {
		res := parse(t, src)
		got := string(Print(res.Tree))
		assert.Equal(t, src, got, "round-trip mismatch for %q", src)
	}
}

func TestEmptyFileProducesEmptyDocument(t *testing.T) {
	res := parse(t, "")
	require.Empty(t, res.Errors)
	require.NotZero(t, res.Tree.Root)
	doc := res.Tree.Node(res.Tree.Root)
	assert.Equal(t, KindDocument, doc.Kind)
	assert.Empty(t, doc.Children)
}

func TestParseSectionWithBraces(t *testing.T) {
	res := parse(t, "@ a.b {\n  c = 1\n}\n")
	require.Empty(t, res.Errors)
	doc := res.Tree.Node(res.Tree.Root)
	require.Len(t, doc.Children, 1)
	sec := res.Tree.Node(doc.Children[0])
	assert.Equal(t, KindSection, sec.Kind)
}

func TestParseEmptySectionHeaderPopsToRoot(t *testing.T) {
	res := parse(t, "@ a\nx = 1\n@\ny = 2\n")
	require.Empty(t, res.Errors)
	doc := res.Tree.Node(res.Tree.Root)
	require.Len(t, doc.Children, 4)
	emptySection := res.Tree.Node(doc.Children[2])
	require.Equal(t, KindSection, emptySection.Kind)
	path := res.Tree.Node(emptySection.Children[1])
	assert.Equal(t, KindPath, path.Kind)
	assert.Empty(t, path.Children)
}

func TestParseExtensionBindingUsesOrdinaryPath(t *testing.T) {
	res := parse(t, "$type = \"int\"\n")
	require.Empty(t, res.Errors)
	doc := res.Tree.Node(res.Tree.Root)
	require.Len(t, doc.Children, 1)
	binding := res.Tree.Node(doc.Children[0])
	require.Equal(t, KindBinding, binding.Kind)
	path := res.Tree.Node(binding.Children[0])
	require.Len(t, path.Children, 1)
	seg := res.Tree.Node(path.Children[0])
	inner := res.Tree.Node(seg.Children[0])
	assert.Equal(t, KindExtIdent, inner.Kind)
}

// A malformed token immediately before a section's closing brace must
// not swallow that brace: the bindings after the section are top-level
// statements, and nothing past them is "missing".
func TestParseRecoveryLeavesEnclosingBrace(t *testing.T) {
	src := "@ a { : }\nx = 1\n"
	res := parse(t, src)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, errors.UnexpectedToken, res.Errors[0].Kind)
	assert.Equal(t, src, string(Print(res.Tree)))

	doc := res.Tree.Node(res.Tree.Root)
	require.Len(t, doc.Children, 2)
	assert.Equal(t, KindSection, res.Tree.Node(doc.Children[0]).Kind)
	assert.Equal(t, KindBinding, res.Tree.Node(doc.Children[1]).Kind)
}

// Recovery that skips tokens keeps their bytes in the tree as Error
// terminals.
func TestParseRecoverySkippedTokensRoundTrip(t *testing.T) {
	sources := []string{
		"@ a { : : }\nx = 1\n",
		"}\nx = 1\n",
		": 1 2\ny = 3\n",
	}
	for _, src := range sources {
		res := parse(t, src)
		require.NotEmpty(t, res.Errors, "expected errors for %q", src)
		assert.Equal(t, src, string(Print(res.Tree)), "round-trip mismatch for %q", src)
	}
}

func TestParseToleratesMissingValue(t *testing.T) {
	res := parse(t, "x =\ny = 1\n")
	require.NotEmpty(t, res.Errors)
	// still produces a tree covering the whole input
	assert.Equal(t, "x =\ny = 1\n", string(Print(res.Tree)))
}
