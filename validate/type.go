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

// Package validate implements the EURE validator: a top-down walk of
// a document against a schema, union disambiguation, and the
// structural type synthesis used to pre-select untagged union
// variants.
package validate

import (
	"eure.dev/go/document"
	"eure.dev/go/schema"
)

// TypeKind classifies a synthesised structural type.
type TypeKind int

const (
	TNull TypeKind = iota
	TBoolean
	TInteger
	TFloat
	TText
	TArray
	TTuple
	TRecord
	TUnion
	TAny
	TNever
	THole
)

// FieldType is one field of a synthesised TRecord type.
type FieldType struct {
	Type     Type
	Optional bool
}

// Type is the structural type synthesised from a document node: an
// upper bound used to pre-select union variants, never the
// final authority on acceptance.
type Type struct {
	Kind     TypeKind
	Lang     document.Language // TText
	LangName string            // TText, when Lang == LangOther
	Elem     *Type             // TArray
	Tuple    []Type            // TTuple
	Fields   map[string]FieldType
}

// SynthesizeType produces the structural type of the document node at
// id.
func SynthesizeType(doc *document.Document, id document.NodeID) Type {
	n := doc.Node(id)
	if n == nil {
		return Type{Kind: TNever}
	}
	switch c := n.Content.(type) {
	case document.Hole:
		return Type{Kind: THole}
	case document.Primitive:
		switch c.PKind {
		case document.PrimNull:
			return Type{Kind: TNull}
		case document.PrimBool:
			return Type{Kind: TBoolean}
		case document.PrimInt:
			return Type{Kind: TInteger}
		case document.PrimF32, document.PrimF64:
			return Type{Kind: TFloat}
		case document.PrimText:
			return Type{Kind: TText, Lang: c.Text.Lang, LangName: c.Text.Other}
		default:
			return Type{Kind: TNever}
		}
	case *document.Map:
		fields := make(map[string]FieldType, c.Len())
		for _, e := range c.Entries() {
			fields[e.Key.String()] = FieldType{Type: SynthesizeType(doc, e.Value)}
		}
		return Type{Kind: TRecord, Fields: fields}
	case document.Array:
		if len(c.Elems) == 0 {
			any := Type{Kind: TAny}
			return Type{Kind: TArray, Elem: &any}
		}
		elem := SynthesizeType(doc, c.Elems[0])
		for _, el := range c.Elems[1:] {
			elem = unifyType(elem, SynthesizeType(doc, el))
		}
		return Type{Kind: TArray, Elem: &elem}
	case document.Tuple:
		elems := make([]Type, len(c.Elems))
		for i, el := range c.Elems {
			elems[i] = SynthesizeType(doc, el)
		}
		return Type{Kind: TTuple, Tuple: elems}
	default:
		return Type{Kind: TNever}
	}
}

// unifyType combines two sibling element/field types: unifying a type
// with Hole yields the other type unchanged; unifying two
// records gathers the union of their fields, marking a field optional
// when only one side has it; any other kind mismatch collapses to Any
// since the synthesised type is only ever an upper bound.
func unifyType(a, b Type) Type {
	if a.Kind == THole {
		return b
	}
	if b.Kind == THole {
		return a
	}
	if a.Kind != b.Kind {
		return Type{Kind: TAny}
	}
	switch a.Kind {
	case TRecord:
		merged := make(map[string]FieldType, len(a.Fields)+len(b.Fields))
		for name, af := range a.Fields {
			if bf, ok := b.Fields[name]; ok {
				merged[name] = FieldType{Type: unifyType(af.Type, bf.Type), Optional: af.Optional || bf.Optional}
			} else {
				merged[name] = FieldType{Type: af.Type, Optional: true}
			}
		}
		for name, bf := range b.Fields {
			if _, ok := a.Fields[name]; !ok {
				merged[name] = FieldType{Type: bf.Type, Optional: true}
			}
		}
		return Type{Kind: TRecord, Fields: merged}
	case TArray:
		et := unifyType(*a.Elem, *b.Elem)
		return Type{Kind: TArray, Elem: &et}
	default:
		return a
	}
}

// accepts reports whether a value of type t could possibly satisfy
// the schema at id: a coarse kind-compatibility check used only to
// pre-select an untagged union variant. The caller
// still runs the real validator against the chosen variant, since
// this check never inspects constraints.
func accepts(sch *schema.Schema, id schema.ID, t Type) bool {
	resolved, ok := sch.Resolve(id)
	if !ok {
		return true
	}
	sn := sch.Node(resolved)
	if sn == nil {
		return false
	}
	if sn.Kind == schema.KindAny || sn.Kind == schema.KindHole {
		return true
	}
	if t.Kind == THole || t.Kind == TAny {
		return true
	}
	switch t.Kind {
	case TNull:
		return sn.Kind == schema.KindNull
	case TBoolean:
		return sn.Kind == schema.KindBoolean
	case TInteger:
		return sn.Kind == schema.KindInteger || sn.Kind == schema.KindFloat
	case TFloat:
		return sn.Kind == schema.KindFloat
	case TText:
		return sn.Kind == schema.KindText
	case TArray:
		return sn.Kind == schema.KindArray
	case TTuple:
		return sn.Kind == schema.KindTuple && (sn.Tuple == nil || len(sn.Tuple) == len(t.Tuple))
	case TRecord:
		if sn.Kind != schema.KindRecord || sn.Record == nil {
			return false
		}
		for _, name := range sn.Record.PropertyOrder {
			p := sn.Record.Properties[name]
			if p.Optional {
				continue
			}
			if _, ok := t.Fields[name]; !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
