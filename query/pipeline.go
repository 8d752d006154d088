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
	"fmt"

	"eure.dev/go/cst"
	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/schema"
	"eure.dev/go/token"
	"eure.dev/go/validate"
)

// The per-file pipeline: parse_cst → valid_cst →
// parse_document → resolve_schema → validate_against_schema →
// get_file_diagnostics. Each stage is its own query so a change to a
// source file invalidates exactly the stages that read it, and so
// hosts can ask for any intermediate result (a CST for a formatter, a
// document for projection) without paying for the rest.

// textContent reads a TextFile asset, converting a NotFound value
// into an asset error.
func textContent(ctx *Context, file token.FileKey) (string, *QueryError) {
	key := TextFileKey{File: file}
	v, err := ctx.Asset(key)
	if err != nil {
		return "", err
	}
	content, ok := v.(TextFileContent)
	if !ok {
		return "", &QueryError{Kind: ErrAssetError, Asset: key, Err: fmt.Errorf("unexpected asset value %T", v)}
	}
	if content.NotFound {
		return "", &QueryError{Kind: ErrAssetError, Asset: key, Err: fmt.Errorf("file not found: %s", file)}
	}
	return content.Content, nil
}

// ParseCSTQuery parses a TextFile asset in tolerant mode. The result
// always carries a tree; parse errors ride alongside it.
type ParseCSTQuery struct {
	File token.FileKey
}

func (q ParseCSTQuery) Key() string { return "ParseCST:" + q.File.String() }

func (q ParseCSTQuery) Eval(ctx *Context) (cst.ParseResult, *QueryError) {
	src, err := textContent(ctx, q.File)
	if err != nil {
		return cst.ParseResult{}, err
	}
	f := token.NewFile(q.File, len(src))
	return cst.ParseTolerant(f, []byte(src)), nil
}

// ValidCSTQuery is ParseCSTQuery with parse errors promoted to a
// user error, gating every downstream stage on a clean parse.
type ValidCSTQuery struct {
	File token.FileKey
}

func (q ValidCSTQuery) Key() string { return "ValidCST:" + q.File.String() }

func (q ValidCSTQuery) Eval(ctx *Context) (*cst.Tree, *QueryError) {
	res, err := Nested(ctx, ParseCSTQuery{File: q.File})
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, UserErr(res.Errors)
	}
	return res.Tree, nil
}

// ResolveSchemaQuery parses File as a document and lowers it to a
// schema node graph.
type ResolveSchemaQuery struct {
	File token.FileKey
}

func (q ResolveSchemaQuery) Key() string { return "ResolveSchema:" + q.File.String() }

func (q ResolveSchemaQuery) Eval(ctx *Context) (*schema.Schema, *QueryError) {
	doc, err := Nested(ctx, ParsedDocumentQuery{File: q.File})
	if err != nil {
		return nil, err
	}
	sch, errs := schema.Load(doc)
	if len(errs) > 0 {
		return nil, UserErr(errs)
	}
	return sch, nil
}

// ValidateQuery validates the document in Doc against the schema in
// Schema, returning the ordered error list (possibly empty).
type ValidateQuery struct {
	Doc    token.FileKey
	Schema token.FileKey
}

func (q ValidateQuery) Key() string {
	return "Validate:doc=" + q.Doc.String() + ",schema=" + q.Schema.String()
}

func (q ValidateQuery) Eval(ctx *Context) (errors.List, *QueryError) {
	doc, err := Nested(ctx, ParsedDocumentQuery{File: q.Doc})
	if err != nil {
		return nil, err
	}
	sch, err := Nested(ctx, ResolveSchemaQuery{File: q.Schema})
	if err != nil {
		return nil, err
	}
	return validate.Document(doc, sch), nil
}

// FileDiagnosticsQuery aggregates every diagnostic Doc produces —
// parse, document construction, and (when Schema is set) schema
// loading and validation — into one sorted list. Unlike the gating
// queries above it never fails on user-level errors: those are its
// output. Control-flow errors (suspend, missing asset) still
// propagate.
type FileDiagnosticsQuery struct {
	Doc    token.FileKey
	Schema token.FileKey // zero value: skip validation
}

func (q FileDiagnosticsQuery) Key() string {
	return "FileDiagnostics:doc=" + q.Doc.String() + ",schema=" + q.Schema.String()
}

func (q FileDiagnosticsQuery) Eval(ctx *Context) (errors.List, *QueryError) {
	var all errors.List
	var doc *document.Document

	if IsYAMLSource(q.Doc.String()) {
		src, err := textContent(ctx, q.Doc)
		if err != nil {
			return nil, err
		}
		var errs errors.List
		doc, errs = DocumentFromYAML(q.Doc, []byte(src))
		all = append(all, errs...)
	} else {
		res, err := Nested(ctx, ParseCSTQuery{File: q.Doc})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Errors...)
		var buildErrs errors.List
		doc, buildErrs = document.Build(res.Tree)
		all = append(all, buildErrs...)
	}

	var zero token.FileKey
	if q.Schema != zero && len(all) == 0 && doc != nil {
		sch, err := Nested(ctx, ResolveSchemaQuery{File: q.Schema})
		switch {
		case err == nil:
			all = append(all, validate.Document(doc, sch)...)
		case err.Kind == ErrUserError:
			all = append(all, err.Reports...)
		default:
			return nil, err
		}
	}

	all = all.Sanitize()
	if max := ctx.rt.cfg.MaxErrorsPerFile; max > 0 && len(all) > max {
		all = all[:max]
	}
	return all, nil
}
