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

// Package schema implements the EURE schema node graph
// and the loader that compiles a parsed document into it.
package schema

import (
	"regexp"

	"github.com/cockroachdb/apd/v3"

	"eure.dev/go/token"
)

// ID indexes into a Schema's arena. The zero value denotes "no node".
type ID int

// Kind classifies a SchemaNode's content.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindText
	KindArray
	KindTuple
	KindRecord
	KindUnion
	KindReference
	KindAny
	KindNever
	KindHole
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindReference:
		return "reference"
	case KindAny:
		return "any"
	case KindNever:
		return "never"
	case KindHole:
		return "hole"
	default:
		return "unknown"
	}
}

// NumberConstraints bounds an Integer or Float schema.
type NumberConstraints struct {
	Min *apd.Decimal
	Max *apd.Decimal
}

// TextConstraints bounds a Text schema.
type TextConstraints struct {
	LengthMin *int
	LengthMax *int
	Pattern   *regexp.Regexp
}

// ArrayConstraints bounds an Array schema.
type ArrayConstraints struct {
	MinItems *int
	MaxItems *int
	Unique   bool
}

// BindingStyle records how a record property's document key is
// derived from its declared name.
type BindingStyle int

const (
	// BindPlain: the document key equals the property name exactly.
	BindPlain BindingStyle = iota
	// BindRenamed: the document key is an explicit alias (PropertySchema.Key).
	BindRenamed
)

// PropertySchema is one entry of a RecordSchema.Properties map.
type PropertySchema struct {
	Name    string
	Key     string // document map key; equals Name unless Style == BindRenamed
	Style   BindingStyle
	Schema  ID
	Optional bool
	Origin  token.Origin
}

// UnknownFieldsPolicy controls whether a record rejects keys it does
// not declare.
type UnknownFieldsPolicy int

const (
	Allow UnknownFieldsPolicy = iota
	Deny
)

// RecordSchema is the content of a KindRecord node.
type RecordSchema struct {
	Properties    map[string]*PropertySchema
	PropertyOrder []string
	// Flatten holds the schema ids (each expected to resolve to a
	// Record, directly or via Reference) whose property sets are
	// unioned into this one during the loader's flatten pass.
	Flatten       []ID
	UnknownFields UnknownFieldsPolicy
}

func NewRecordSchema() *RecordSchema {
	return &RecordSchema{Properties: make(map[string]*PropertySchema)}
}

// AddProperty inserts p, preserving declaration order.
func (r *RecordSchema) AddProperty(p *PropertySchema) {
	if _, exists := r.Properties[p.Name]; !exists {
		r.PropertyOrder = append(r.PropertyOrder, p.Name)
	}
	r.Properties[p.Name] = p
}

// VariantReprKind classifies how a UnionSchema's variants are tagged
// in the document.
type VariantReprKind int

const (
	ReprExternal VariantReprKind = iota
	ReprInternal
	ReprAdjacent
	ReprUntagged
)

// VariantRepr is the union's wire representation.
type VariantRepr struct {
	Kind    VariantReprKind
	Tag     string // ReprInternal, ReprAdjacent
	Content string // ReprAdjacent
}

// UnionSchema is the content of a KindUnion node.
type UnionSchema struct {
	Variants     map[string]ID
	VariantOrder []string
	Repr         VariantRepr
	DenyUntagged map[string]bool
	Unambiguous  map[string]bool // populated by the loader's disambiguation pass
}

func NewUnionSchema() *UnionSchema {
	return &UnionSchema{
		Variants:     make(map[string]ID),
		DenyUntagged: make(map[string]bool),
		Unambiguous:  make(map[string]bool),
	}
}

// AddVariant inserts a named variant, preserving declaration order.
func (u *UnionSchema) AddVariant(name string, id ID) {
	if _, exists := u.Variants[name]; !exists {
		u.VariantOrder = append(u.VariantOrder, name)
	}
	u.Variants[name] = id
}

// SchemaNode is one arena entry: a Kind plus the payload it carries.
// Only the fields relevant to Kind are populated; this mirrors the
// document package's Content-interface approach but as a flat struct,
// since schema nodes need a uniform Description/Origin regardless of
// kind (description is legal on any schema kind).
type SchemaNode struct {
	ID          ID
	Kind        Kind
	Origin      token.Origin
	Description string

	Number  NumberConstraints // KindInteger, KindFloat
	Text    TextConstraints   // KindText
	Elem    ID                // KindArray
	Array   ArrayConstraints  // KindArray
	Tuple   []ID              // KindTuple
	Record  *RecordSchema     // KindRecord
	Union   *UnionSchema      // KindUnion
	RefName string            // KindReference
}

// Schema is the arena-indexed schema graph plus the named
// $types namespace resolved by the loader.
type Schema struct {
	Nodes []SchemaNode
	Root  ID
	Types map[string]ID
}

func newSchema() *Schema {
	return &Schema{Types: make(map[string]ID)}
}

func (s *Schema) alloc(n SchemaNode) ID {
	s.Nodes = append(s.Nodes, n)
	id := ID(len(s.Nodes))
	s.Nodes[id-1].ID = id
	return id
}

// Node returns a pointer to the node for id, or nil if id is not
// live.
func (s *Schema) Node(id ID) *SchemaNode {
	if id <= 0 || int(id) > len(s.Nodes) {
		return nil
	}
	return &s.Nodes[id-1]
}

// Resolve follows Reference nodes until a non-reference node is
// reached, detecting cycles. A cycle is reported via ok=false;
// callers tolerate it by treating the result as Any.
func (s *Schema) Resolve(id ID) (ID, bool) {
	seen := make(map[ID]bool)
	for {
		n := s.Node(id)
		if n == nil {
			return 0, false
		}
		if n.Kind != KindReference {
			return id, true
		}
		if seen[id] {
			return 0, false
		}
		seen[id] = true
		next, ok := s.Types[n.RefName]
		if !ok {
			return 0, false
		}
		id = next
	}
}
