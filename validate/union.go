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
	"strings"

	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/schema"
	"eure.dev/go/token"
)

// discriminator resolves a union tag/content field named name on the
// map node at id. A "$"-prefixed name addresses the node's extensions
// — the only place the builder can put a "$" binding, since "$" path
// segments never become ordinary map keys — while any other name is a
// regular map entry.
func (v *validator) discriminator(id document.NodeID, m *document.Map, name string) (document.NodeID, bool) {
	if strings.HasPrefix(name, "$") {
		return v.doc.Extension(id, strings.TrimPrefix(name, "$"))
	}
	return m.Get(document.StringKey(name))
}

// matchUnion validates a union value, dispatching on the
// union's VariantRepr.
func (v *validator) matchUnion(id document.NodeID, n *document.Node, sn *schema.SchemaNode, o token.Origin, path []string) {
	u := sn.Union
	switch u.Repr.Kind {
	case schema.ReprExternal:
		v.matchExternal(id, n, u, o, path)
	case schema.ReprInternal:
		v.matchInternal(id, n, u, o, path)
	case schema.ReprAdjacent:
		v.matchAdjacent(id, n, u, o, path)
	case schema.ReprUntagged:
		v.matchUntagged(id, n, u, o, path)
	}
}

// matchExternal expects a single-entry map {variantName: payload}.
func (v *validator) matchExternal(id document.NodeID, n *document.Node, u *schema.UnionSchema, o token.Origin, path []string) {
	m, ok := n.Content.(*document.Map)
	if !ok || m.Len() != 1 {
		v.errf(o, errors.VariantDiscriminatorMissing, path, "expected a single-entry map naming the union variant")
		return
	}
	key := m.Keys()[0]
	name := key.String()
	variant, known := u.Variants[name]
	if !known {
		v.errf(o, errors.UnknownVariant, appendField(path, name), "unknown union variant %q", name)
		return
	}
	valID, _ := m.Get(key)
	v.node(valID, variant, appendField(path, name), nil)
}

// matchInternal expects the tag field inline in the same map as the
// variant's own fields; the tag key is excluded from the variant's
// UnexpectedField check since it belongs to the union, not the
// variant's own record shape.
func (v *validator) matchInternal(id document.NodeID, n *document.Node, u *schema.UnionSchema, o token.Origin, path []string) {
	m, ok := n.Content.(*document.Map)
	if !ok {
		v.errf(o, errors.TypeMismatch, path, "expected map, found %s", contentKindName(n.Content))
		return
	}
	tagID, present := v.discriminator(id, m, u.Repr.Tag)
	if !present {
		v.errf(o, errors.VariantDiscriminatorMissing, path, "missing tag field %q", u.Repr.Tag)
		return
	}
	name := v.textValue(tagID)
	variant, known := u.Variants[name]
	if !known {
		v.errf(o, errors.UnknownVariant, appendField(path, u.Repr.Tag), "unknown union variant %q", name)
		return
	}
	v.node(id, variant, path, map[string]bool{u.Repr.Tag: true})
}

// matchAdjacent expects {tag: variantName, content: payload}.
func (v *validator) matchAdjacent(id document.NodeID, n *document.Node, u *schema.UnionSchema, o token.Origin, path []string) {
	m, ok := n.Content.(*document.Map)
	if !ok {
		v.errf(o, errors.TypeMismatch, path, "expected map, found %s", contentKindName(n.Content))
		return
	}
	tagID, present := v.discriminator(id, m, u.Repr.Tag)
	if !present {
		v.errf(o, errors.VariantDiscriminatorMissing, path, "missing tag field %q", u.Repr.Tag)
		return
	}
	name := v.textValue(tagID)
	variant, known := u.Variants[name]
	if !known {
		v.errf(o, errors.UnknownVariant, appendField(path, u.Repr.Tag), "unknown union variant %q", name)
		return
	}
	contentID, present := v.discriminator(id, m, u.Repr.Content)
	if !present {
		v.errf(o, errors.VariantDiscriminatorMissing, path, "missing content field %q", u.Repr.Content)
		return
	}
	for _, key := range m.Keys() {
		name := key.String()
		if name != u.Repr.Tag && name != u.Repr.Content {
			v.errf(o, errors.UnexpectedField, appendField(path, name), "unexpected field %q", name)
		}
	}
	v.node(contentID, variant, appendField(path, u.Repr.Content), nil)
}

// matchUntagged has two paths: when the
// synthesised type of the value is accepted by exactly one variant
// marked Unambiguous by the loader's disambiguation pass, that variant
// is chosen directly; otherwise every variant (in declaration order,
// skipping DenyUntagged) is tried in turn against a scratch error
// list, and the first one that produces no errors wins. Since the
// validator never mutates document or schema state, trying a variant
// into a discarded local list is equivalent to a snapshot/rollback of
// accessed fields.
func (v *validator) matchUntagged(id document.NodeID, n *document.Node, u *schema.UnionSchema, o token.Origin, path []string) {
	t := SynthesizeType(v.doc, id)

	var unambiguousMatch schema.ID
	matches := 0
	for _, name := range u.VariantOrder {
		if u.DenyUntagged[name] {
			continue
		}
		if !u.Unambiguous[name] {
			continue
		}
		variant := u.Variants[name]
		if accepts(v.sch, variant, t) {
			unambiguousMatch = variant
			matches++
		}
	}
	if matches == 1 {
		v.node(id, unambiguousMatch, path, nil)
		return
	}

	for _, name := range u.VariantOrder {
		if u.DenyUntagged[name] {
			continue
		}
		variant := u.Variants[name]
		trial := &validator{doc: v.doc, sch: v.sch}
		trial.node(id, variant, path, nil)
		if len(trial.errs) == 0 {
			v.errs = append(v.errs, trial.errs...)
			return
		}
	}
	if matches > 1 {
		v.errf(o, errors.AmbiguousUnion, path, "value matches more than one untagged union variant")
		return
	}
	v.errf(o, errors.NoVariantMatched, path, "value does not match any variant of this union")
}

// textValue reads a text primitive's value, or "" if id isn't one.
func (v *validator) textValue(id document.NodeID) string {
	n := v.doc.Node(id)
	if n == nil {
		return ""
	}
	p, ok := n.Content.(document.Primitive)
	if !ok || p.PKind != document.PrimText {
		return ""
	}
	return p.Text.Value
}
