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

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/goccy/go-yaml"

	"eure.dev/go/document"
	"eure.dev/go/errors"
	"eure.dev/go/token"
)

// IsYAMLSource reports whether a TextFile's path names an alternate
// YAML encoding of a EURE document (DOMAIN STACK: schema authors may
// write ".eure.yaml" instead of ".eure").
func IsYAMLSource(path string) bool {
	return strings.HasSuffix(path, ".eure.yaml") || strings.HasSuffix(path, ".eure.yml")
}

// DocumentFromYAML decodes YAML source into the same document model
// the EURE parser produces: every mapping becomes a document.Map,
// every sequence a document.Array, and every scalar the matching
// Primitive kind. YAML has no hole or tuple literal, so the result
// never contains either. Map keys are sorted for determinism, since
// YAML mapping order is not guaranteed to survive decoding into a
// generic value.
func DocumentFromYAML(file token.FileKey, src []byte) (*document.Document, errors.List) {
	var generic any
	if err := yaml.Unmarshal(src, &generic); err != nil {
		var errs errors.List
		errs.AddNewf(errors.UnexpectedToken, token.Origin{File: file}, "invalid YAML: %v", err)
		return nil, errs
	}
	doc := &document.Document{Origin: document.NewOriginMap()}
	doc.Root = fromYAMLValue(doc, generic)
	return doc, nil
}

func fromYAMLValue(doc *document.Document, v any) document.NodeID {
	switch val := v.(type) {
	case nil:
		return doc.NewNode(document.Primitive{PKind: document.PrimNull})
	case bool:
		return doc.NewNode(document.Primitive{PKind: document.PrimBool, Bool: val})
	case int:
		return doc.NewNode(document.Primitive{PKind: document.PrimInt, Int: apd.New(int64(val), 0)})
	case int64:
		return doc.NewNode(document.Primitive{PKind: document.PrimInt, Int: apd.New(val, 0)})
	case uint64:
		return doc.NewNode(document.Primitive{PKind: document.PrimInt, Int: apd.NewWithBigInt(new(apd.BigInt).SetUint64(val), 0)})
	case float64:
		return doc.NewNode(document.Primitive{PKind: document.PrimF64, F64: val})
	case string:
		return doc.NewNode(document.Primitive{PKind: document.PrimText, Text: document.Text{Lang: document.LangImplicit, Value: val}})
	case []any:
		arr := document.Array{Elems: make([]document.NodeID, len(val))}
		for i, e := range val {
			arr.Elems[i] = fromYAMLValue(doc, e)
		}
		return doc.NewNode(arr)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := document.NewMap()
		id := doc.NewNode(m)
		for _, k := range keys {
			m.Set(document.StringKey(k), fromYAMLValue(doc, val[k]))
		}
		return id
	default:
		return doc.NewNode(document.Primitive{PKind: document.PrimText, Text: document.Text{Value: fmt.Sprintf("%v", val)}})
	}
}
