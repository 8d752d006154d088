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
	"fmt"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/schema"
	"eure.dev/go/token"
)

// Document validates doc's root against sch's root.
func Document(doc *document.Document, sch *schema.Schema) errors.List {
	v := &validator{doc: doc, sch: sch}
	v.node(doc.Root, sch.Root, nil, nil)
	return v.errs
}

type validator struct {
	doc  *document.Document
	sch  *schema.Schema
	errs errors.List
}

func (v *validator) origin(id document.NodeID) token.Origin {
	o, _ := v.doc.Origin.OriginOf(id)
	return o
}

func (v *validator) errf(o token.Origin, kind errors.Kind, path []string, format string, args ...any) {
	e := errors.Newf(kind, o, format, args...)
	if len(path) > 0 {
		e.WithPath(path...)
	}
	v.errs.Add(e)
}

// node validates the document node at id against the schema at
// schemaID, appending errors to v.errs. exclude names record keys of
// a record-shaped node that a union variant already consumed as a
// tag/content discriminator and so must not be reported as
// unexpected.
func (v *validator) node(id document.NodeID, schemaID schema.ID, path []string, exclude map[string]bool) {
	resolved, ok := v.sch.Resolve(schemaID)
	if !ok {
		return // reference cycle: tolerated by treating the node as Any.
	}
	sn := v.sch.Node(resolved)
	n := v.doc.Node(id)
	if sn == nil || n == nil {
		return
	}
	o := v.origin(id)

	switch sn.Kind {
	case schema.KindAny, schema.KindHole:
		return
	case schema.KindNever:
		v.errf(o, errors.TypeMismatch, path, "value is not allowed here")
	case schema.KindNull:
		v.matchPrimitive(n, document.PrimNull, sn, o, path)
	case schema.KindBoolean:
		v.matchPrimitive(n, document.PrimBool, sn, o, path)
	case schema.KindInteger:
		v.matchPrimitive(n, document.PrimInt, sn, o, path)
	case schema.KindFloat:
		v.matchFloat(n, sn, o, path)
	case schema.KindText:
		v.matchText(n, sn, o, path)
	case schema.KindArray:
		v.matchArray(n, sn, o, path)
	case schema.KindTuple:
		v.matchTuple(n, sn, o, path)
	case schema.KindRecord:
		v.matchRecord(id, n, sn, o, path, exclude)
	case schema.KindUnion:
		v.matchUnion(id, n, sn, o, path)
	}
}

func (v *validator) matchPrimitive(n *document.Node, want document.PrimKind, sn *schema.SchemaNode, o token.Origin, path []string) {
	p, ok := n.Content.(document.Primitive)
	if !ok || p.PKind != want {
		v.errf(o, errors.TypeMismatch, path, "expected %s, found %s", want.String(), contentKindName(n.Content))
		return
	}
	if want == document.PrimInt {
		v.checkRange(p, sn, o, path)
	}
}

func (v *validator) matchFloat(n *document.Node, sn *schema.SchemaNode, o token.Origin, path []string) {
	p, ok := n.Content.(document.Primitive)
	if !ok || (p.PKind != document.PrimF32 && p.PKind != document.PrimF64) {
		v.errf(o, errors.TypeMismatch, path, "expected float, found %s", contentKindName(n.Content))
		return
	}
	v.checkRange(p, sn, o, path)
}

func (v *validator) checkRange(p document.Primitive, sn *schema.SchemaNode, o token.Origin, path []string) {
	var d *apd.Decimal
	switch p.PKind {
	case document.PrimInt:
		d = p.Int
	case document.PrimF32:
		d, _ = new(apd.Decimal).SetFloat64(float64(p.F32))
	case document.PrimF64:
		d, _ = new(apd.Decimal).SetFloat64(p.F64)
	}
	if d == nil {
		return
	}
	if sn.Number.Min != nil && d.Cmp(sn.Number.Min) < 0 {
		v.errf(o, errors.RangeViolation, path, "value %s is below the minimum of %s", d, sn.Number.Min)
	}
	if sn.Number.Max != nil && d.Cmp(sn.Number.Max) > 0 {
		v.errf(o, errors.RangeViolation, path, "value %s exceeds the maximum of %s", d, sn.Number.Max)
	}
}

func (v *validator) matchText(n *document.Node, sn *schema.SchemaNode, o token.Origin, path []string) {
	p, ok := n.Content.(document.Primitive)
	if !ok || p.PKind != document.PrimText {
		v.errf(o, errors.TypeMismatch, path, "expected text, found %s", contentKindName(n.Content))
		return
	}
	runeLen := utf8.RuneCountInString(p.Text.Value)
	if sn.Text.LengthMin != nil && runeLen < *sn.Text.LengthMin {
		v.errf(o, errors.LengthViolation, path, "text is shorter than the minimum length of %d", *sn.Text.LengthMin)
	}
	if sn.Text.LengthMax != nil && runeLen > *sn.Text.LengthMax {
		v.errf(o, errors.LengthViolation, path, "text is longer than the maximum length of %d", *sn.Text.LengthMax)
	}
	if sn.Text.Pattern != nil && !sn.Text.Pattern.MatchString(p.Text.Value) {
		v.errf(o, errors.PatternMismatch, path, "text does not match pattern %q", sn.Text.Pattern.String())
	}
}

func (v *validator) matchArray(n *document.Node, sn *schema.SchemaNode, o token.Origin, path []string) {
	arr, ok := n.Content.(document.Array)
	if !ok {
		v.errf(o, errors.TypeMismatch, path, "expected array, found %s", contentKindName(n.Content))
		return
	}
	if sn.Array.MinItems != nil && len(arr.Elems) < *sn.Array.MinItems {
		v.errf(o, errors.ArrayLengthViolation, path, "array has fewer than the minimum of %d items", *sn.Array.MinItems)
	}
	if sn.Array.MaxItems != nil && len(arr.Elems) > *sn.Array.MaxItems {
		v.errf(o, errors.ArrayLengthViolation, path, "array has more than the maximum of %d items", *sn.Array.MaxItems)
	}
	if sn.Array.Unique {
		for i := 0; i < len(arr.Elems); i++ {
			for j := i + 1; j < len(arr.Elems); j++ {
				if docEqual(v.doc, arr.Elems[i], arr.Elems[j]) {
					v.errf(v.origin(arr.Elems[j]), errors.ArrayLengthViolation, appendIdx(path, j), "duplicate element in an array requiring unique items")
				}
			}
		}
	}
	for i, el := range arr.Elems {
		v.node(el, sn.Elem, appendIdx(path, i), nil)
	}
}

func (v *validator) matchTuple(n *document.Node, sn *schema.SchemaNode, o token.Origin, path []string) {
	tup, ok := n.Content.(document.Tuple)
	if !ok {
		v.errf(o, errors.TypeMismatch, path, "expected tuple, found %s", contentKindName(n.Content))
		return
	}
	if len(tup.Elems) != len(sn.Tuple) {
		v.errf(o, errors.ArrayLengthViolation, path, "tuple has %d elements, expected %d", len(tup.Elems), len(sn.Tuple))
	}
	for i := 0; i < len(tup.Elems) && i < len(sn.Tuple); i++ {
		v.node(tup.Elems[i], sn.Tuple[i], appendIdx(path, i), nil)
	}
}

func (v *validator) matchRecord(id document.NodeID, n *document.Node, sn *schema.SchemaNode, o token.Origin, path []string, exclude map[string]bool) {
	m, ok := n.Content.(*document.Map)
	if !ok {
		v.errf(o, errors.TypeMismatch, path, "expected map, found %s", contentKindName(n.Content))
		return
	}
	known := make(map[string]bool, len(sn.Record.PropertyOrder))
	for _, name := range sn.Record.PropertyOrder {
		p := sn.Record.Properties[name]
		known[p.Key] = true
		valID, present := m.Get(document.StringKey(p.Key))
		if !present {
			if !p.Optional {
				v.errf(o, errors.RequiredFieldMissing, appendField(path, p.Key), "required field %q is missing", p.Key)
			}
			continue
		}
		v.node(valID, p.Schema, appendField(path, p.Key), nil)
	}
	if sn.Record.UnknownFields == schema.Deny {
		for _, key := range m.Keys() {
			name := key.String()
			if known[name] || exclude[name] {
				continue
			}
			keyOrigin, ok := v.doc.Origin.KeyOrigin(id, key)
			if !ok {
				keyOrigin = o
			}
			v.errf(keyOrigin, errors.UnexpectedField, appendField(path, name), "unexpected field %q", name)
		}
	}
}

func contentKindName(c document.Content) string {
	if c == nil {
		return "hole"
	}
	return c.Kind()
}

func appendIdx(path []string, i int) []string {
	return append(append([]string(nil), path...), fmt.Sprintf("[%d]", i))
}

func appendField(path []string, name string) []string {
	return append(append([]string(nil), path...), name)
}

// docEqual reports whether two document nodes are deeply equal,
// ignoring origin, for the array Unique constraint.
func docEqual(doc *document.Document, a, b document.NodeID) bool {
	na, nb := doc.Node(a), doc.Node(b)
	if na == nil || nb == nil {
		return na == nb
	}
	switch ca := na.Content.(type) {
	case document.Primitive:
		cb, ok := nb.Content.(document.Primitive)
		if !ok || ca.PKind != cb.PKind {
			return false
		}
		switch ca.PKind {
		case document.PrimNull:
			return true
		case document.PrimBool:
			return ca.Bool == cb.Bool
		case document.PrimInt:
			return ca.Int.Cmp(cb.Int) == 0
		case document.PrimF32:
			return ca.F32 == cb.F32
		case document.PrimF64:
			return ca.F64 == cb.F64
		case document.PrimText:
			return ca.Text.Value == cb.Text.Value && ca.Text.Lang == cb.Text.Lang && ca.Text.Other == cb.Text.Other
		}
		return false
	case document.Hole:
		_, ok := nb.Content.(document.Hole)
		return ok
	case document.Array:
		cb, ok := nb.Content.(document.Array)
		if !ok || len(ca.Elems) != len(cb.Elems) {
			return false
		}
		for i := range ca.Elems {
			if !docEqual(doc, ca.Elems[i], cb.Elems[i]) {
				return false
			}
		}
		return true
	case document.Tuple:
		cb, ok := nb.Content.(document.Tuple)
		if !ok || len(ca.Elems) != len(cb.Elems) {
			return false
		}
		for i := range ca.Elems {
			if !docEqual(doc, ca.Elems[i], cb.Elems[i]) {
				return false
			}
		}
		return true
	case *document.Map:
		cb, ok := nb.Content.(*document.Map)
		if !ok || ca.Len() != cb.Len() {
			return false
		}
		for _, e := range ca.Entries() {
			bv, present := cb.Get(e.Key)
			if !present || !docEqual(doc, e.Value, bv) {
				return false
			}
		}
		return true
	}
	return false
}
