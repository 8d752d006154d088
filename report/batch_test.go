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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eure.dev/go/errors"
	"eure.dev/go/token"
)

func TestBatchMarshalJSON(t *testing.T) {
	fs := token.NewFileSet()
	key := token.LocalFile("a.eure")
	src := []byte("name = 1\n")
	fs.AddFile(key, len(src))
	reg := NewFileRegistry(fs)
	reg.AddSource(key, src)

	errs := errors.List{
		errors.Newf(errors.TypeMismatch, token.Origin{File: key, Span: token.Span{Start: 7, End: 8}},
			"expected text, found integer").WithPath("name"),
	}
	out, err := Batch{Errors: errs, Files: reg}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"kind":"TypeMismatch","severity":"error","message":"expected text, found integer","file":"a.eure","line":1,"column":8,"path":"name"}]`,
		string(out))
}

func TestBatchMarshalJSONWithoutRegistry(t *testing.T) {
	key := token.LocalFile("a.eure")
	errs := errors.List{
		errors.Newf(errors.UnexpectedToken, token.Origin{File: key}, "expected a value"),
	}
	out, err := Batch{Errors: errs}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"kind":"UnexpectedToken","severity":"error","message":"expected a value","file":"a.eure"}]`,
		string(out))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil, false))
	assert.Equal(t, 1, ExitCode(errors.List{errors.Newf(errors.TypeMismatch, token.Origin{}, "x")}, false))
	assert.Equal(t, 2, ExitCode(nil, true))
}
