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
	"eure.dev/go/document"
	"eure.dev/go/token"
)

// ParsedDocumentQuery reads a TextFile asset and builds a document,
// dispatching to the YAML alternate encoding when the file's path
// names one. It is the query-layer counterpart of the cst/document
// packages' pure parse-then-build pipeline, driven by an asset read
// instead of a direct in-memory string. FileDiagnosticsQuery makes
// the same dispatch itself so it can collect the errors as output.
type ParsedDocumentQuery struct {
	File token.FileKey
}

func (q ParsedDocumentQuery) Key() string { return "ParsedDocument:" + q.File.String() }

func (q ParsedDocumentQuery) Eval(ctx *Context) (*document.Document, *QueryError) {
	if IsYAMLSource(q.File.String()) {
		src, err := textContent(ctx, q.File)
		if err != nil {
			return nil, err
		}
		doc, errs := DocumentFromYAML(q.File, []byte(src))
		if len(errs) > 0 {
			return nil, UserErr(errs)
		}
		return doc, nil
	}

	tree, err := Nested(ctx, ValidCSTQuery{File: q.File})
	if err != nil {
		return nil, err
	}
	doc, errs := document.Build(tree)
	if len(errs) > 0 {
		return nil, UserErr(errs)
	}
	return doc, nil
}
