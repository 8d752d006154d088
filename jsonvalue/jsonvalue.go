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

// Package jsonvalue implements the surjective document → JSON value
// projection: maps become objects with deterministically
// stringified keys, arrays and tuples become JSON arrays, primitives
// project directly, and holes cause the projection to fail.
package jsonvalue

import (
	"bytes"
	"encoding/json"

	gojson "github.com/goccy/go-json"

	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/token"
)

// LanguageObserver is invoked once per Text node visited during
// projection, carrying the path to that node and its language tag.
// The default Project discards language information; a caller that
// needs it supplies an observer via ProjectAnnotated, keeping the
// tag as a side channel that only exists when asked for.
type LanguageObserver func(path []string, lang document.Language, langName string)

// Object is an insertion-ordered JSON object: a plain map[string]any
// would let goccy/go-json (like encoding/json) re-sort keys
// alphabetically on marshal, which would break the field-order
// round-trip property expected of the projection.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set inserts or overwrites key, preserving original insertion
// position on overwrite.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string { return append([]string(nil), o.keys...) }

// MarshalJSON renders the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := gojson.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project converts the document node at id into a generic JSON value
// (nested *Object / []any / string / json.Number / bool / nil),
// discarding text language tags. It fails immediately — rather than
// accumulating, since a hole makes the whole subtree unprojectable —
// the first time it encounters a Hole, with errors.CannotProjectHole
// carrying that hole's origin.
func Project(doc *document.Document, id document.NodeID) (any, *errors.CoreError) {
	return ProjectAnnotated(doc, id, nil)
}

// ProjectAnnotated is Project plus an optional LanguageObserver
// invoked for every Text value projected.
func ProjectAnnotated(doc *document.Document, id document.NodeID, onText LanguageObserver) (any, *errors.CoreError) {
	p := &projector{doc: doc, onText: onText}
	return p.project(id, nil)
}

type projector struct {
	doc    *document.Document
	onText LanguageObserver
}

func (p *projector) project(id document.NodeID, path []string) (any, *errors.CoreError) {
	n := p.doc.Node(id)
	if n == nil {
		return nil, nil
	}
	switch c := n.Content.(type) {
	case document.Hole:
		o, _ := p.doc.Origin.OriginOf(id)
		return nil, errors.Newf(errors.CannotProjectHole, o, "cannot project a hole to JSON")
	case document.Primitive:
		return p.projectPrimitive(c, path)
	case *document.Map:
		obj := NewObject()
		for _, e := range c.Entries() {
			v, err := p.project(e.Value, append(path, e.Key.JSONString()))
			if err != nil {
				return nil, err
			}
			obj.Set(e.Key.JSONString(), v)
		}
		return obj, nil
	case document.Array:
		out := make([]any, len(c.Elems))
		for i, el := range c.Elems {
			v, err := p.project(el, append(path, indexLabel(i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case document.Tuple:
		out := make([]any, len(c.Elems))
		for i, el := range c.Elems {
			v, err := p.project(el, append(path, indexLabel(i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, nil
	}
}

func (p *projector) projectPrimitive(c document.Primitive, path []string) (any, *errors.CoreError) {
	switch c.PKind {
	case document.PrimNull:
		return nil, nil
	case document.PrimBool:
		return c.Bool, nil
	case document.PrimInt:
		return json.Number(c.Int.String()), nil
	case document.PrimF32:
		return json.Number(trimFloat(float64(c.F32))), nil
	case document.PrimF64:
		return json.Number(trimFloat(c.F64)), nil
	case document.PrimText:
		if p.onText != nil {
			p.onText(append([]string(nil), path...), c.Text.Lang, c.Text.Other)
		}
		return c.Text.Value, nil
	default:
		return nil, nil
	}
}

func indexLabel(i int) string {
	return "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func trimFloat(f float64) string {
	b, _ := gojson.Marshal(f)
	return string(b)
}

// Marshal renders doc's node at id as compact JSON.
func Marshal(doc *document.Document, id document.NodeID) ([]byte, *errors.CoreError) {
	v, err := Project(doc, id)
	if err != nil {
		return nil, err
	}
	b, merr := gojson.Marshal(v)
	if merr != nil {
		return nil, errors.Newf(errors.CannotProjectHole, token.Origin{}, "%v", merr)
	}
	return b, nil
}

// MarshalIndent renders doc's node at id as indented JSON.
func MarshalIndent(doc *document.Document, id document.NodeID, prefix, indent string) ([]byte, *errors.CoreError) {
	v, err := Project(doc, id)
	if err != nil {
		return nil, err
	}
	b, merr := gojson.MarshalIndent(v, prefix, indent)
	if merr != nil {
		return nil, errors.Newf(errors.CannotProjectHole, token.Origin{}, "%v", merr)
	}
	return b, nil
}
