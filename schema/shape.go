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

// Shape is the schema-level counterpart of the document-level
// structural type, used by the union loader's
// disambiguation pass to classify a *variant's declared shape* before
// any document value exists to synthesise a type from.
type Shape int

const (
	ShapeNull Shape = iota
	ShapeBool
	ShapeInteger
	ShapeFloat
	ShapeText
	ShapeArray
	ShapeTuple
	ShapeRecord
	ShapeUnion
	ShapeAny
	ShapeNever
	ShapeHole
)

// shapeOf classifies id's resolved content. For KindRecord it also
// returns the set of required (non-optional) property names, needed
// by disjoint to compare two records structurally.
func shapeOf(s *Schema, id ID) (Shape, map[string]bool) {
	resolved, ok := s.Resolve(id)
	if !ok {
		return ShapeNever, nil
	}
	n := s.Node(resolved)
	if n == nil {
		return ShapeNever, nil
	}
	switch n.Kind {
	case KindNull:
		return ShapeNull, nil
	case KindBoolean:
		return ShapeBool, nil
	case KindInteger:
		return ShapeInteger, nil
	case KindFloat:
		return ShapeFloat, nil
	case KindText:
		return ShapeText, nil
	case KindArray:
		return ShapeArray, nil
	case KindTuple:
		return ShapeTuple, nil
	case KindRecord:
		fields := make(map[string]bool)
		if n.Record != nil {
			for _, name := range n.Record.PropertyOrder {
				if !n.Record.Properties[name].Optional {
					fields[name] = true
				}
			}
		}
		return ShapeRecord, fields
	case KindUnion:
		return ShapeUnion, nil
	case KindHole:
		return ShapeHole, nil
	default:
		return ShapeAny, nil
	}
}

// disjoint reports whether two variants can never both accept the
// same document value. Different top-level shapes always are, except
// that Any overlaps every shape. Two
// records are only judged disjoint when both declare at least one
// required field and their required-field sets share none in common
// — a conservative approximation (two records that happen to share no
// required field can still both match a value that supplies extra
// fields) that the validator's fallback trial-and-rollback path exists
// to cover exactly when this approximation is wrong.
func disjoint(sa Shape, fa map[string]bool, sb Shape, fb map[string]bool) bool {
	if sa == ShapeAny || sb == ShapeAny {
		return false
	}
	if sa != sb {
		return true
	}
	if sa != ShapeRecord {
		return false
	}
	if len(fa) == 0 || len(fb) == 0 {
		return false
	}
	for f := range fa {
		if fb[f] {
			return false
		}
	}
	return true
}
