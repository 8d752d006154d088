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

package schema

import (
	"regexp"

	"github.com/cockroachdb/apd/v3"

	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/token"
)

// Load compiles a parsed document into a Schema graph.
// The document's root must be a map; a top-level "$types" entry (also
// a map) introduces named types referenceable from anywhere in the
// schema, and every other root key becomes a property of the root
// record.
//
// Field-level schema selection follows one convention throughout: a
// field's schema is its "$type" extension when present, else the
// field's own value compiled as a schema expression directly (so
// `count = "integer"` is sugar for `count.$type = "integer"`).
// Constraints (min, max, length.min/.max, pattern, min-items,
// max-items, unique, description) are read from the field's own
// node: as ordinary entries next to its "$type" (`age.min = 0`), or
// as extensions of the same name. "$optional", "$rename", and
// "$flatten" are read as extensions on the field's own node.
func Load(doc *document.Document) (*Schema, errors.List) {
	b := &builder{doc: doc, sch: newSchema()}
	root := doc.Node(doc.Root)
	if root == nil {
		b.errf(token.Origin{}, errors.ExpectedMap, "schema document has no root")
		return b.sch, b.errs
	}
	rm, ok := root.Content.(*document.Map)
	if !ok {
		b.errf(b.origin(doc.Root), errors.ExpectedMap, "schema document root must be a map")
		return b.sch, b.errs
	}

	if typesID, ok := doc.Extension(doc.Root, "types"); ok {
		tn := doc.Node(typesID)
		if tm, ok := tn.Content.(*document.Map); ok {
			for _, e := range tm.Entries() {
				b.sch.Types[e.Key.String()] = b.compileExpr(e.Value)
			}
		} else {
			b.errf(b.origin(typesID), errors.ExpectedMap, "$types must be a map of name to schema")
		}
	}

	rec := b.compileRecordFields(rm)
	rec.UnknownFields = b.unknownFieldsPolicy(doc.Root)
	b.sch.Root = b.newNode(SchemaNode{Kind: KindRecord, Origin: b.origin(doc.Root), Record: rec})

	b.checkReferences()
	b.resolveFlatten()
	b.computeUnambiguous()
	return b.sch, b.errs
}

// checkReferences verifies that every Reference node names a $types
// entry and that no reference chain loops back on itself; downstream
// consumers (flatten, disambiguation, the validator) may then assume
// Resolve only fails on inputs already reported here.
func (b *builder) checkReferences() {
	for i := range b.sch.Nodes {
		n := &b.sch.Nodes[i]
		if n.Kind != KindReference {
			continue
		}
		if _, ok := b.sch.Types[n.RefName]; !ok {
			b.errf(n.Origin, errors.UnknownTypeReference, "unknown type reference %q", n.RefName)
			continue
		}
		if _, ok := b.sch.Resolve(n.ID); !ok {
			b.errf(n.Origin, errors.Cycle, "type reference %q is part of a reference cycle", n.RefName)
		}
	}
}

type builder struct {
	doc  *document.Document
	sch  *Schema
	errs errors.List
}

func (b *builder) origin(id document.NodeID) token.Origin {
	o, _ := b.doc.Origin.OriginOf(id)
	return o
}

func (b *builder) errf(o token.Origin, kind errors.Kind, format string, args ...any) {
	b.errs.AddNewf(kind, o, format, args...)
}

func (b *builder) newNode(n SchemaNode) ID {
	return b.sch.alloc(n)
}

// compileExpr compiles the document node at id into a schema node,
// inferring Kind from its content: a bare name ("integer", "text",
// ...) selects a primitive, a map is a record (or a union when it
// carries a "$variant-repr" extension), an array/tuple compiles its
// element(s) recursively, and any other text names a reference into
// $types.
func (b *builder) compileExpr(id document.NodeID) ID {
	n := b.doc.Node(id)
	o := b.origin(id)
	if n == nil {
		return b.newNode(SchemaNode{Kind: KindNever, Origin: o})
	}
	switch c := n.Content.(type) {
	case document.Hole:
		return b.newNode(SchemaNode{Kind: KindHole, Origin: o})
	case document.Primitive:
		if c.PKind == document.PrimText {
			return b.compileName(c.Text.Value, o)
		}
		b.errf(o, errors.InvalidConstraint, "expected a schema expression, found a %s literal", c.PKind.String())
		return b.newNode(SchemaNode{Kind: KindNever, Origin: o})
	case *document.Map:
		return b.compileMapExpr(id, c, o)
	case document.Array:
		return b.compileArrayExpr(c, o)
	case document.Tuple:
		return b.compileTupleExpr(c, o)
	default:
		return b.newNode(SchemaNode{Kind: KindNever, Origin: o})
	}
}

var primitiveNames = map[string]Kind{
	"null":    KindNull,
	"boolean": KindBoolean,
	"integer": KindInteger,
	"float":   KindFloat,
	"text":    KindText,
	"any":     KindAny,
	"never":   KindNever,
}

func (b *builder) compileName(name string, o token.Origin) ID {
	if kind, ok := primitiveNames[name]; ok {
		return b.newNode(SchemaNode{Kind: kind, Origin: o})
	}
	return b.newNode(SchemaNode{Kind: KindReference, RefName: name, Origin: o})
}

func (b *builder) compileMapExpr(id document.NodeID, m *document.Map, o token.Origin) ID {
	if reprID, ok := b.doc.Extension(id, "variant-repr"); ok {
		return b.compileUnion(m, reprID, o)
	}
	rec := b.compileRecordFields(m)
	rec.UnknownFields = b.unknownFieldsPolicy(id)
	return b.newNode(SchemaNode{Kind: KindRecord, Origin: o, Record: rec})
}

// unknownFieldsPolicy reads a record node's "$unknown-fields" extension
// ("allow" | "deny"), defaulting to Allow when absent.
func (b *builder) unknownFieldsPolicy(mapID document.NodeID) UnknownFieldsPolicy {
	v, ok := b.doc.Extension(mapID, "unknown-fields")
	if !ok {
		return Allow
	}
	if b.textOf(v) == "deny" {
		return Deny
	}
	return Allow
}

// compileRecordFields builds a RecordSchema from m's ordinary entries.
// Extension keys such as "$types" never appear here since the builder
// stores them in the owning node's Extensions map, not as regular map
// entries. Fields carrying a "$flatten" extension contribute their
// schema to Flatten instead of becoming a named property.
func (b *builder) compileRecordFields(m *document.Map) *RecordSchema {
	rec := NewRecordSchema()
	for _, e := range m.Entries() {
		name := e.Key.String()
		valueID := e.Value

		typeID := b.fieldTypeID(valueID)
		if flattenID, ok := b.doc.Extension(valueID, "flatten"); ok && b.boolOf(flattenID) {
			rec.Flatten = append(rec.Flatten, typeID)
			continue
		}

		ps := &PropertySchema{Name: name, Key: name, Schema: typeID, Origin: b.origin(valueID)}
		if optID, ok := b.doc.Extension(valueID, "optional"); ok {
			ps.Optional = b.boolOf(optID)
		}
		if renameID, ok := b.doc.Extension(valueID, "rename"); ok {
			ps.Key = b.textOf(renameID)
			ps.Style = BindRenamed
		}
		rec.AddProperty(ps)
	}
	return rec
}

// fieldTypeID resolves a field's schema (its "$type" extension if
// present, else its own value compiled directly) and applies any
// constraints found on the field's node.
func (b *builder) fieldTypeID(valueID document.NodeID) ID {
	var typeID ID
	if typeExtID, ok := b.doc.Extension(valueID, "type"); ok {
		typeID = b.compileExpr(typeExtID)
	} else {
		typeID = b.compileExpr(valueID)
	}
	b.applyConstraints(valueID, typeID)
	return typeID
}

func (b *builder) applyConstraints(fieldID document.NodeID, typeID ID) {
	sn := b.sch.Node(typeID)
	if sn == nil {
		return
	}
	// Without "$type" the field's own map entries are the schema itself,
	// so they are read as constraints only when "$type" is present.
	_, typed := b.doc.Extension(fieldID, "type")
	constraint := func(name string) (document.NodeID, bool) {
		if fm, ok := b.doc.Node(fieldID).Content.(*document.Map); ok && typed {
			if v, ok := fm.Get(document.StringKey(name)); ok {
				return v, true
			}
		}
		return b.doc.Extension(fieldID, name)
	}
	if descID, ok := constraint("description"); ok {
		sn.Description = b.textOf(descID)
	}
	switch sn.Kind {
	case KindInteger, KindFloat:
		if v, ok := constraint("min"); ok {
			sn.Number.Min = b.decimalOf(v)
		}
		if v, ok := constraint("max"); ok {
			sn.Number.Max = b.decimalOf(v)
		}
	case KindText:
		if lengthID, ok := constraint("length"); ok {
			if lm, ok := b.doc.Node(lengthID).Content.(*document.Map); ok {
				if minID, ok := lm.Get(document.StringKey("min")); ok {
					sn.Text.LengthMin = b.intPtrOf(minID)
				}
				if maxID, ok := lm.Get(document.StringKey("max")); ok {
					sn.Text.LengthMax = b.intPtrOf(maxID)
				}
			}
		}
		if v, ok := constraint("pattern"); ok {
			pat := b.textOf(v)
			re, err := regexp.Compile(pat)
			if err != nil {
				b.errf(b.origin(v), errors.InvalidConstraint, "invalid pattern %q: %v", pat, err)
			} else {
				sn.Text.Pattern = re
			}
		}
	case KindArray:
		if v, ok := constraint("min-items"); ok {
			sn.Array.MinItems = b.intPtrOf(v)
		}
		if v, ok := constraint("max-items"); ok {
			sn.Array.MaxItems = b.intPtrOf(v)
		}
		if v, ok := constraint("unique"); ok {
			sn.Array.Unique = b.boolOf(v)
		}
	}
}

func (b *builder) compileUnion(m *document.Map, reprID document.NodeID, o token.Origin) ID {
	u := NewUnionSchema()
	for _, e := range m.Entries() {
		name := e.Key.String()
		u.AddVariant(name, b.compileExpr(e.Value))
		if denyID, ok := b.doc.Extension(e.Value, "deny-untagged"); ok && b.boolOf(denyID) {
			u.DenyUntagged[name] = true
		}
	}
	u.Repr = b.compileVariantRepr(reprID)
	return b.newNode(SchemaNode{Kind: KindUnion, Origin: o, Union: u})
}

func (b *builder) compileVariantRepr(reprID document.NodeID) VariantRepr {
	n := b.doc.Node(reprID)
	switch c := n.Content.(type) {
	case document.Primitive:
		if c.PKind == document.PrimText && c.Text.Value == "untagged" {
			return VariantRepr{Kind: ReprUntagged}
		}
		b.errf(b.origin(reprID), errors.InvalidConstraint, "unsupported $variant-repr value %q; expected \"untagged\" or a tag/content map", c.Text.Value)
		return VariantRepr{Kind: ReprExternal}
	case *document.Map:
		tag, content := "", ""
		if tagID, ok := c.Get(document.StringKey("tag")); ok {
			tag = b.textOf(tagID)
		}
		if contentID, ok := c.Get(document.StringKey("content")); ok {
			content = b.textOf(contentID)
		}
		switch {
		case tag != "" && content != "":
			return VariantRepr{Kind: ReprAdjacent, Tag: tag, Content: content}
		case tag != "":
			return VariantRepr{Kind: ReprInternal, Tag: tag}
		default:
			return VariantRepr{Kind: ReprExternal}
		}
	default:
		return VariantRepr{Kind: ReprExternal}
	}
}

func (b *builder) compileArrayExpr(arr document.Array, o token.Origin) ID {
	var elem ID
	if len(arr.Elems) == 0 {
		elem = b.newNode(SchemaNode{Kind: KindAny, Origin: o})
	} else {
		elem = b.compileExpr(arr.Elems[0])
	}
	return b.newNode(SchemaNode{Kind: KindArray, Origin: o, Elem: elem})
}

func (b *builder) compileTupleExpr(tup document.Tuple, o token.Origin) ID {
	elems := make([]ID, len(tup.Elems))
	for i, el := range tup.Elems {
		elems[i] = b.compileExpr(el)
	}
	return b.newNode(SchemaNode{Kind: KindTuple, Origin: o, Tuple: elems})
}

// resolveFlatten substitutes every Record.Flatten entry with the
// referenced record's properties, reporting FlattenCollision when a flattened name already
// exists.
func (b *builder) resolveFlatten() {
	for i := range b.sch.Nodes {
		n := &b.sch.Nodes[i]
		if n.Kind != KindRecord || n.Record == nil || len(n.Record.Flatten) == 0 {
			continue
		}
		for _, flattenID := range n.Record.Flatten {
			resolvedID, ok := b.sch.Resolve(flattenID)
			if !ok {
				b.errf(n.Origin, errors.Cycle, "flatten target could not be resolved")
				continue
			}
			fn := b.sch.Node(resolvedID)
			if fn == nil || fn.Kind != KindRecord || fn.Record == nil {
				b.errf(n.Origin, errors.InvalidConstraint, "flatten target is not a record")
				continue
			}
			for _, name := range fn.Record.PropertyOrder {
				p := fn.Record.Properties[name]
				if existing, exists := n.Record.Properties[name]; exists {
					e := errors.Newf(errors.FlattenCollision, p.Origin, "flattened property %q collides with an existing property", name)
					e.WithRelated(existing.Origin)
					b.errs.Add(e)
					continue
				}
				cp := *p
				n.Record.AddProperty(&cp)
			}
		}
	}
}

// computeUnambiguous fills each untagged UnionSchema's Unambiguous set
// using the schema-level
// structural shape of each variant (see shape.go) rather than a
// document instance, since no document exists yet at load time.
func (b *builder) computeUnambiguous() {
	for i := range b.sch.Nodes {
		n := &b.sch.Nodes[i]
		if n.Kind != KindUnion || n.Union == nil || n.Union.Repr.Kind != ReprUntagged {
			continue
		}
		shapes := make(map[string]Shape, len(n.Union.VariantOrder))
		fields := make(map[string]map[string]bool, len(n.Union.VariantOrder))
		for _, name := range n.Union.VariantOrder {
			sh, f := shapeOf(b.sch, n.Union.Variants[name])
			shapes[name] = sh
			fields[name] = f
		}
		for _, name := range n.Union.VariantOrder {
			unambiguous := true
			for _, other := range n.Union.VariantOrder {
				if other == name {
					continue
				}
				if !disjoint(shapes[name], fields[name], shapes[other], fields[other]) {
					unambiguous = false
					break
				}
			}
			if unambiguous {
				n.Union.Unambiguous[name] = true
			}
		}
	}
}

func (b *builder) textOf(id document.NodeID) string {
	n := b.doc.Node(id)
	if n == nil {
		return ""
	}
	if p, ok := n.Content.(document.Primitive); ok && p.PKind == document.PrimText {
		return p.Text.Value
	}
	return ""
}

func (b *builder) boolOf(id document.NodeID) bool {
	n := b.doc.Node(id)
	if n == nil {
		return false
	}
	if p, ok := n.Content.(document.Primitive); ok && p.PKind == document.PrimBool {
		return p.Bool
	}
	return false
}

func (b *builder) decimalOf(id document.NodeID) *apd.Decimal {
	n := b.doc.Node(id)
	if n == nil {
		return nil
	}
	p, ok := n.Content.(document.Primitive)
	if !ok {
		return nil
	}
	switch p.PKind {
	case document.PrimInt:
		return p.Int
	case document.PrimF64:
		d, err := new(apd.Decimal).SetFloat64(p.F64)
		if err != nil {
			return nil
		}
		return d
	case document.PrimF32:
		d, err := new(apd.Decimal).SetFloat64(float64(p.F32))
		if err != nil {
			return nil
		}
		return d
	default:
		return nil
	}
}

func (b *builder) intPtrOf(id document.NodeID) *int {
	n := b.doc.Node(id)
	if n == nil {
		return nil
	}
	p, ok := n.Content.(document.Primitive)
	if !ok || p.PKind != document.PrimInt {
		return nil
	}
	i64, err := p.Int.Int64()
	if err != nil {
		return nil
	}
	v := int(i64)
	return &v
}
