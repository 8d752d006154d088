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

import (
	"fmt"
	"math/big"
	"strings"
)

// ObjectKeyKind classifies an ObjectKey's payload. Floats, null, and
// holes are forbidden as keys to guarantee deterministic
// equality.
type ObjectKeyKind int

const (
	KeyBool ObjectKeyKind = iota
	KeyInt
	KeyString
	KeyTuple
)

// ObjectKey is a map key: bool | integer | string | tuple-of-ObjectKey.
type ObjectKey struct {
	kind ObjectKeyKind
	b    bool
	i    *big.Int
	s    string
	tup  []ObjectKey
}

func BoolKey(b bool) ObjectKey      { return ObjectKey{kind: KeyBool, b: b} }
func IntKey(i *big.Int) ObjectKey   { return ObjectKey{kind: KeyInt, i: i} }
func IntKeyFromInt64(i int64) ObjectKey {
	return ObjectKey{kind: KeyInt, i: big.NewInt(i)}
}
func StringKey(s string) ObjectKey   { return ObjectKey{kind: KeyString, s: s} }
func TupleKey(parts []ObjectKey) ObjectKey {
	return ObjectKey{kind: KeyTuple, tup: parts}
}

func (k ObjectKey) Kind() ObjectKeyKind { return k.kind }
func (k ObjectKey) Bool() bool          { return k.b }
func (k ObjectKey) Int() *big.Int       { return k.i }
func (k ObjectKey) String() string {
	switch k.kind {
	case KeyBool:
		if k.b {
			return "true"
		}
		return "false"
	case KeyInt:
		return k.i.String()
	case KeyString:
		return k.s
	case KeyTuple:
		parts := make([]string, len(k.tup))
		for i, p := range k.tup {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return ""
	}
}

// encode produces a canonical, comparable string used as the hash
// key inside Map's index, since ObjectKey itself (holding a
// *big.Int and a []ObjectKey) is not a valid native Go map key.
func (k ObjectKey) encode() string {
	switch k.kind {
	case KeyBool:
		return "b:" + k.String()
	case KeyInt:
		return "i:" + k.i.String()
	case KeyString:
		return "s:" + k.s
	case KeyTuple:
		parts := make([]string, len(k.tup))
		for i, p := range k.tup {
			parts[i] = p.encode()
		}
		return "t:(" + strings.Join(parts, ",") + ")"
	default:
		return fmt.Sprintf("?:%v", k)
	}
}

// Equal reports whether two ObjectKeys are the same key.
func (k ObjectKey) Equal(other ObjectKey) bool {
	return k.encode() == other.encode()
}

// JSONString renders the key the way the JSON projection stringifies
// map keys: booleans as "true"/"false", integers in
// canonical base 10, tuple keys with a "(k1,k2,...)" syntax.
func (k ObjectKey) JSONString() string {
	switch k.kind {
	case KeyTuple:
		parts := make([]string, len(k.tup))
		for i, p := range k.tup {
			parts[i] = p.JSONString()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return k.String()
	}
}
