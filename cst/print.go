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

package cst

import "strings"

// Print reprints a Tree's exact source bytes by walking every
// terminal in declaration order and emitting its leading trivia
// followed by its literal text, then the tree's trailing trivia.
// Print is not a formatter: it performs no reflowing; it exists to
// state and test the lossless round-trip contract.
func Print(t *Tree) []byte {
	var b strings.Builder
	if t.Root != 0 {
		printNode(t, t.Root, &b)
	}
	for _, tr := range t.Trailing {
		b.WriteString(tr.Text)
	}
	return []byte(b.String())
}

func printNode(t *Tree, id NodeID, b *strings.Builder) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if n.Kind.IsTerminal() {
		for _, tr := range n.Leading {
			b.WriteString(tr.Text)
		}
		b.WriteString(n.Lit)
		return
	}
	for _, c := range n.Children {
		printNode(t, c, b)
	}
}
