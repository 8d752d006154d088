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

package document

import "eure.dev/go/token"

// KeyRef identifies a (parent node, object key) pair, distinct from
// the value's own origins.
type KeyRef struct {
	Parent NodeID
	Key    string // ObjectKey.encode()
}

// OriginMap composes NodeOrigins and KeyOrigins: for each
// node, zero or more source origins (multiple when the node was
// merged from several bindings); for each (parent, key) pair, the
// origin of the key token itself.
type OriginMap struct {
	nodes map[NodeID][]token.Origin
	keys  map[KeyRef]token.Origin
}

func NewOriginMap() *OriginMap {
	return &OriginMap{
		nodes: make(map[NodeID][]token.Origin),
		keys:  make(map[KeyRef]token.Origin),
	}
}

// AddNode records that id was (re)declared at o.
func (m *OriginMap) AddNode(id NodeID, o token.Origin) {
	m.nodes[id] = append(m.nodes[id], o)
}

// AddKey records the origin of a key token for (parent, key).
func (m *OriginMap) AddKey(parent NodeID, key ObjectKey, o token.Origin) {
	m.keys[KeyRef{Parent: parent, Key: key.encode()}] = o
}

// NodeOrigins returns all recorded origins for id, in the order they
// were added (first is the original declaration).
func (m *OriginMap) NodeOrigins(id NodeID) []token.Origin {
	return m.nodes[id]
}

// KeyOrigin returns the origin of the key token for (parent, key).
func (m *OriginMap) KeyOrigin(parent NodeID, key ObjectKey) (token.Origin, bool) {
	o, ok := m.keys[KeyRef{Parent: parent, Key: key.encode()}]
	return o, ok
}

// OriginOf resolves a single representative origin for id: the first
// recorded (declaration) origin when its span is non-empty, else the
// union ("Cover") of every origin recorded for it in that origin's
// file, else the zero Origin with ok=false.
func (m *OriginMap) OriginOf(id NodeID) (token.Origin, bool) {
	origins := m.nodes[id]
	if len(origins) == 0 {
		return token.Origin{}, false
	}
	out := origins[0]
	if !out.Span.IsEmpty() {
		return out, true
	}
	for _, o := range origins[1:] {
		if o.File == out.File {
			out.Span = out.Span.Cover(o.Span)
		}
	}
	return out, true
}
