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

// Package document implements the EURE document model: an
// arena-indexed tree of Map/Array/Tuple/Primitive/Hole nodes,
// addressed by path segments, with an origin map recording where
// every node and key came from in source.
package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// NodeID indexes into a Document's arena. The zero value denotes "no
// node" (used for uninitialised fields, never a live node).
type NodeID int

// Language tags a Text value's source form.
type Language int

const (
	LangPlaintext Language = iota // "..."
	LangImplicit                  // `...`
	LangOther                     // lang`...`
)

// Compatible reports whether a and b can unify as the same text
// language: Implicit unifies with anything, Plaintext only with
// itself, and two Other tags unify only if their names match.
func (a Language) Compatible(aName string, b Language, bName string) bool {
	switch {
	case a == LangImplicit || b == LangImplicit:
		return true
	case a == LangPlaintext && b == LangPlaintext:
		return true
	case a == LangOther && b == LangOther:
		return aName == bName
	default:
		return false
	}
}

// Text is a language-tagged text value.
type Text struct {
	Lang  Language
	Other string // populated when Lang == LangOther
	Value string
}

// PrimKind classifies a Primitive's payload.
type PrimKind int

const (
	PrimNull PrimKind = iota
	PrimBool
	PrimInt
	PrimF32
	PrimF64
	PrimText
)

func (k PrimKind) String() string {
	switch k {
	case PrimNull:
		return "null"
	case PrimBool:
		return "bool"
	case PrimInt:
		return "integer"
	case PrimF32:
		return "f32"
	case PrimF64:
		return "f64"
	case PrimText:
		return "text"
	default:
		return "unknown"
	}
}

// Content is the closed sum of node payload kinds: Hole,
// Primitive, Map, Array, or Tuple. It is sealed with an unexported
// method rather than modelled as a Go enum, since implementations
// carry different payload shapes.
type Content interface {
	isContent()
	Kind() string
}

// Hole is an explicit, author-written placeholder ("!" or "!label").
// Two holes with different labels are distinct only for diagnostics;
// they compare equal as Content.
type Hole struct {
	Label string // "" if unlabelled
}

func (Hole) isContent()   {}
func (Hole) Kind() string { return "hole" }

// Primitive is null | bool | integer | f32 | f64 | text. Integers
// are arbitrary precision, carried as apd decimals with exponent 0.
type Primitive struct {
	PKind PrimKind
	Bool  bool
	Int   *apd.Decimal
	F32   float32
	F64   float64
	Text  Text
}

func (Primitive) isContent()   {}
func (p Primitive) Kind() string { return p.PKind.String() }

// Map is an insertion-ordered mapping from ObjectKey to NodeID. Meta-
// extensions ($$ident bindings) live in a separate keyspace
// so they survive value-layer projection without colliding with
// ordinary ObjectKey entries or the node-level Extensions map.
type Map struct {
	entries []mapEntry
	index   map[string]int

	metaEntries []metaEntry
	metaIndex   map[string]int
}

type mapEntry struct {
	Key   ObjectKey
	Value NodeID
}

type metaEntry struct {
	Name  string
	Value NodeID
}

func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (Map) isContent()   {}
func (Map) Kind() string { return "map" }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Get returns the value for key and whether it was present.
func (m *Map) Get(key ObjectKey) (NodeID, bool) {
	i, ok := m.index[key.encode()]
	if !ok {
		return 0, false
	}
	return m.entries[i].Value, true
}

// Set inserts or overwrites the value for key, preserving original
// insertion position on overwrite.
func (m *Map) Set(key ObjectKey, value NodeID) {
	enc := key.encode()
	if i, ok := m.index[enc]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[enc] = len(m.entries)
	m.entries = append(m.entries, mapEntry{Key: key, Value: value})
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []ObjectKey {
	out := make([]ObjectKey, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

// Entries returns the (key, value) pairs in insertion order.
func (m *Map) Entries() [](struct {
	Key   ObjectKey
	Value NodeID
}) {
	out := make([]struct {
		Key   ObjectKey
		Value NodeID
	}, len(m.entries))
	for i, e := range m.entries {
		out[i] = struct {
			Key   ObjectKey
			Value NodeID
		}{e.Key, e.Value}
	}
	return out
}

// GetMeta returns the value bound to meta-extension name ($$name), and
// whether it was present.
func (m *Map) GetMeta(name string) (NodeID, bool) {
	if m.metaIndex == nil {
		return 0, false
	}
	i, ok := m.metaIndex[name]
	if !ok {
		return 0, false
	}
	return m.metaEntries[i].Value, true
}

// SetMeta inserts or overwrites the value bound to meta-extension
// name, preserving original insertion position on overwrite.
func (m *Map) SetMeta(name string, value NodeID) {
	if m.metaIndex == nil {
		m.metaIndex = make(map[string]int)
	}
	if i, ok := m.metaIndex[name]; ok {
		m.metaEntries[i].Value = value
		return
	}
	m.metaIndex[name] = len(m.metaEntries)
	m.metaEntries = append(m.metaEntries, metaEntry{Name: name, Value: value})
}

// MetaEntries returns the (name, value) meta-extension pairs in
// insertion order.
func (m *Map) MetaEntries() [](struct {
	Name  string
	Value NodeID
}) {
	out := make([]struct {
		Name  string
		Value NodeID
	}, len(m.metaEntries))
	for i, e := range m.metaEntries {
		out[i] = struct {
			Name  string
			Value NodeID
		}{e.Name, e.Value}
	}
	return out
}

// Array is an ordered sequence of elements.
type Array struct {
	Elems []NodeID
}

func (Array) isContent()   {}
func (Array) Kind() string { return "array" }

// Tuple is a fixed-length heterogeneous sequence, indexed 0..=255.
type Tuple struct {
	Elems []NodeID
}

func (Tuple) isContent()   {}
func (Tuple) Kind() string { return "tuple" }

// MaxTupleIndex is the largest legal tuple index; anything above it
// is a TupleIndexOverflow.
const MaxTupleIndex = 255

// Node is one document arena entry. Extensions is keyed by bare
// identifier (without the leading "$"); it is orthogonal to Content:
// a map with extensions still reports its map content.
type Node struct {
	ID         NodeID
	Content    Content
	Extensions map[string]NodeID
}

// Document is the arena-indexed document tree.
type Document struct {
	Nodes  []Node
	Root   NodeID
	Origin *OriginMap
}

// New creates an empty document whose root is an empty map.
func New() *Document {
	d := &Document{Origin: NewOriginMap()}
	root := d.alloc(NewMap())
	d.Root = root
	return d
}

func (d *Document) alloc(c Content) NodeID {
	d.Nodes = append(d.Nodes, Node{Content: c, Extensions: nil})
	id := NodeID(len(d.Nodes))
	d.Nodes[id-1].ID = id
	return id
}

// Node returns a pointer to the node for id, or nil if id is not
// live.
func (d *Document) Node(id NodeID) *Node {
	if id <= 0 || int(id) > len(d.Nodes) {
		return nil
	}
	return &d.Nodes[id-1]
}

// Map returns the *Map content of id, or nil if id isn't a map node.
func (d *Document) Map(id NodeID) *Map {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	if m, ok := n.Content.(*Map); ok {
		return m
	}
	return nil
}

// NewNode allocates a fresh node with the given content and returns
// its id.
func (d *Document) NewNode(c Content) NodeID {
	return d.alloc(c)
}

// SetExtension attaches value under name (without "$") to the
// extensions of id.
func (d *Document) SetExtension(id NodeID, name string, value NodeID) {
	n := d.Node(id)
	if n == nil {
		return
	}
	if n.Extensions == nil {
		n.Extensions = make(map[string]NodeID)
	}
	n.Extensions[name] = value
}

// Extension looks up an extension by bare name.
func (d *Document) Extension(id NodeID, name string) (NodeID, bool) {
	n := d.Node(id)
	if n == nil {
		return 0, false
	}
	v, ok := n.Extensions[name]
	return v, ok
}

// HoleRef names a located hole, returned by Holes().
type HoleRef struct {
	Node  NodeID
	Label string
	Path  Path
}

// Holes enumerates every Hole node reachable from the root, in
// pre-order, each paired with the path that reaches it. This
// lets a host build an inspect/fill command without this package
// growing one.
func (d *Document) Holes() []HoleRef {
	var out []HoleRef
	var walk func(id NodeID, path Path)
	walk = func(id NodeID, path Path) {
		n := d.Node(id)
		if n == nil {
			return
		}
		switch c := n.Content.(type) {
		case Hole:
			out = append(out, HoleRef{Node: id, Label: c.Label, Path: append(Path(nil), path...)})
		case *Map:
			for _, e := range c.Entries() {
				walk(e.Value, append(path, PathSegment{Kind: SegValue, Value: e.Key}))
			}
		case Array:
			for i, el := range c.Elems {
				idx := i
				walk(el, append(path, PathSegment{Kind: SegArrayIndex, ArrayIndex: &idx}))
			}
		case Tuple:
			for i, el := range c.Elems {
				walk(el, append(path, PathSegment{Kind: SegTupleIndex, TupleIndex: uint8(i)}))
			}
		}
	}
	walk(d.Root, nil)
	return out
}

// Fill replaces a Hole node's content in place. It is an error to
// fill a non-hole node.
func (d *Document) Fill(id NodeID, c Content) error {
	n := d.Node(id)
	if n == nil {
		return fmt.Errorf("document: no such node %d", id)
	}
	if _, ok := n.Content.(Hole); !ok {
		return fmt.Errorf("document: node %d is not a hole", id)
	}
	n.Content = c
	return nil
}

// debugString is a small, dependency-free tree dump used by tests to
// sanity-check structure without reaching for the JSON projection
// (which rejects holes).
func (d *Document) debugString(id NodeID, sb *strings.Builder, depth int) {
	n := d.Node(id)
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	indent := strings.Repeat("  ", depth)
	switch c := n.Content.(type) {
	case *Map:
		sb.WriteString("{\n")
		keys := c.Keys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].encode() < keys[j].encode() })
		for _, k := range keys {
			v, _ := c.Get(k)
			fmt.Fprintf(sb, "%s  %s: ", indent, k.encode())
			d.debugString(v, sb, depth+1)
			sb.WriteString("\n")
		}
		fmt.Fprintf(sb, "%s}", indent)
	default:
		fmt.Fprintf(sb, "%v", c)
	}
}
