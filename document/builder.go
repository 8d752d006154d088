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
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"eure.dev/go/cst"
	"eure.dev/go/errors"
	"eure.dev/go/lexer"
	"eure.dev/go/token"
)

// Build walks a parsed CST and produces a Document plus an error
// list. It never aborts: every recoverable problem
// is recorded and the offending statement is skipped, so the rest of
// the file still contributes to the result.
func Build(tree *cst.Tree) (*Document, errors.List) {
	b := &builder{tree: tree, doc: New()}
	root := tree.Root
	if root == 0 {
		return b.doc, b.errs
	}
	b.buildStatements(tree.Children(root), b.doc.Root)
	return b.doc, b.errs
}

type builder struct {
	tree *cst.Tree
	doc  *Document
	errs errors.List
}

func (b *builder) origin(span token.Span) token.Origin {
	return token.Origin{File: b.tree.File, Span: span}
}

func (b *builder) errf(o token.Origin, kind errors.Kind, format string, args ...any) {
	b.errs.AddNewf(kind, o, format, args...)
}

// buildStatements processes a sequence of top-level statements (the
// Document's children, or a Section's braced body) against a cursor
// that starts at base and may be re-pointed by bare "@ path" headers
// until the sequence ends.
func (b *builder) buildStatements(stmts []cst.NodeID, base NodeID) {
	cursor := base
	for _, s := range stmts {
		n := b.tree.Node(s)
		if n == nil {
			continue
		}
		switch n.Kind {
		case cst.KindBinding:
			b.processBinding(cursor, s)
		case cst.KindSection:
			cursor = b.processSection(cursor, s)
		default:
			// synthetic Error node from parse recovery: nothing to build.
		}
	}
}

// processSection resolves a section's path relative to the document
// root (not cumulatively relative to the current cursor; bare "@ a.b"
// and "@ a.b { ... }" always address the same node regardless of
// where a previous section left the cursor). If the section has a
// braced body, its statements are built against the resolved target
// and the outer cursor is returned unchanged; otherwise the resolved
// target becomes the new cursor for following siblings.
func (b *builder) processSection(outerCursor NodeID, s cst.NodeID) NodeID {
	children := b.tree.Children(s)
	if len(children) < 2 {
		return outerCursor
	}
	pathNode := children[1]
	segs, ok := b.buildPath(pathNode)
	o := b.origin(b.tree.Node(s).Span)
	if !ok {
		return outerCursor
	}
	var target NodeID
	if len(segs) == 0 {
		// empty "@" header: pop to root.
		target = b.doc.Root
	} else {
		t, err := b.navigate(b.doc.Root, segs, o)
		if err != nil {
			b.errs.Add(err)
			return outerCursor
		}
		target = t
	}
	if hasBrace(b.tree, children) {
		b.buildStatements(innerStatements(children), target)
		return outerCursor
	}
	return target
}

func hasBrace(tree *cst.Tree, children []cst.NodeID) bool {
	if len(children) < 3 {
		return false
	}
	n := tree.Node(children[2])
	return n != nil && n.Kind == cst.KindSymbol && n.Tok == lexer.LBRACE
}

func innerStatements(children []cst.NodeID) []cst.NodeID {
	if len(children) < 4 {
		return nil
	}
	return children[3 : len(children)-1]
}

// processBinding resolves path = value (or path: value) relative to
// base, then merges the built value into the target node.
func (b *builder) processBinding(base NodeID, bindingNode cst.NodeID) {
	children := b.tree.Children(bindingNode)
	if len(children) < 3 {
		return
	}
	pathNode, valueNode := children[0], children[2]
	segs, ok := b.buildPath(pathNode)
	if !ok || len(segs) == 0 {
		return
	}
	o := b.origin(b.tree.Node(bindingNode).Span)
	parent := base
	var err *errors.CoreError
	if len(segs) > 1 {
		parent, err = b.navigate(base, segs[:len(segs)-1], o)
		if err != nil {
			b.errs.Add(err)
			return
		}
	}
	last := segs[len(segs)-1]
	target, err := b.stepChild(parent, last, o)
	if err != nil {
		b.errs.Add(err)
		return
	}
	newID := b.buildValue(valueNode)
	b.mergeContent(target, newID, o, true)
}

// buildPath converts a KindPath CST node into PathSegments, recording
// InvalidIdentifier/InvalidInteger/TupleIndexOverflow errors for any
// malformed segment it encounters. ok is false only when the path
// itself could not be read at all (an empty @ header has ok=true and
// zero segments).
func (b *builder) buildPath(pathNode cst.NodeID) ([]PathSegment, bool) {
	n := b.tree.Node(pathNode)
	if n == nil || n.Kind != cst.KindPath {
		return nil, false
	}
	var segs []PathSegment
	for _, c := range n.Children {
		cn := b.tree.Node(c)
		if cn == nil || cn.Kind != cst.KindPathSegment {
			continue // '.' separator
		}
		seg, err, ok := b.buildSegment(c)
		if err != nil {
			b.errs.Add(err)
		}
		if ok {
			segs = append(segs, seg)
		}
	}
	return segs, true
}

// buildSegment decodes one KindPathSegment node. ok is false when the
// segment was malformed (an upstream parse error, or a semantic
// rejection like a reserved-keyword identifier) and must not
// contribute a PathSegment at all.
func (b *builder) buildSegment(segNode cst.NodeID) (seg PathSegment, err *errors.CoreError, ok bool) {
	n := b.tree.Node(segNode)
	if len(n.Children) == 0 {
		return PathSegment{}, nil, false
	}
	inner := b.tree.Node(n.Children[0])
	o := b.origin(inner.Span)
	switch inner.Kind {
	case cst.KindIdent:
		lit := inner.Lit
		if lit == "true" || lit == "false" || lit == "null" {
			return PathSegment{}, errors.Newf(errors.InvalidIdentifier, o, "reserved keyword %q cannot be used as an identifier", lit), false
		}
		return PathSegment{Kind: SegIdent, Ident: lit}, nil, true
	case cst.KindExtIdent:
		return PathSegment{Kind: SegExtension, Ident: strings.TrimPrefix(inner.Lit, "$")}, nil, true
	case cst.KindMetaExtIdent:
		return PathSegment{Kind: SegMetaExtension, Ident: strings.TrimPrefix(inner.Lit, "$$")}, nil, true
	case cst.KindArrayIndex:
		s, err := b.buildArrayIndexSegment(n.Children[0])
		return s, err, err == nil
	case cst.KindTupleIndex:
		s, err := b.buildTupleIndexSegment(n.Children[0])
		return s, err, err == nil
	default:
		return PathSegment{}, nil, false
	}
}

func (b *builder) buildArrayIndexSegment(idxNode cst.NodeID) (PathSegment, *errors.CoreError) {
	children := b.tree.Children(idxNode)
	for _, c := range children {
		cn := b.tree.Node(c)
		if cn.Kind == cst.KindInt {
			o := b.origin(cn.Span)
			v, err := strconv.Atoi(cn.Lit)
			if err != nil || v < 0 {
				return PathSegment{}, errors.Newf(errors.InvalidInteger, o, "invalid array index %q", cn.Lit)
			}
			return PathSegment{Kind: SegArrayIndex, ArrayIndex: &v}, nil
		}
	}
	return PathSegment{Kind: SegArrayIndex, ArrayIndex: nil}, nil
}

func (b *builder) buildTupleIndexSegment(idxNode cst.NodeID) (PathSegment, *errors.CoreError) {
	children := b.tree.Children(idxNode)
	for _, c := range children {
		cn := b.tree.Node(c)
		if cn.Kind == cst.KindInt {
			o := b.origin(cn.Span)
			v, err := strconv.Atoi(cn.Lit)
			if err != nil || v < 0 {
				return PathSegment{}, errors.Newf(errors.InvalidInteger, o, "invalid tuple index %q", cn.Lit)
			}
			if v > MaxTupleIndex {
				return PathSegment{}, errors.Newf(errors.TupleIndexOverflow, o, "tuple index %d exceeds the maximum of %d", v, MaxTupleIndex)
			}
			return PathSegment{Kind: SegTupleIndex, TupleIndex: uint8(v)}, nil
		}
	}
	return PathSegment{}, errors.Newf(errors.InvalidInteger, b.origin(b.tree.Node(idxNode).Span), "missing tuple index")
}

// navigate walks segs from base, materialising maps, arrays, and
// tuples along the way (converting Holes in place), and returns the
// final node reached.
func (b *builder) navigate(base NodeID, segs []PathSegment, o token.Origin) (NodeID, *errors.CoreError) {
	cur := base
	for _, seg := range segs {
		next, err := b.stepChild(cur, seg, o)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return cur, nil
}

// stepChild returns (creating if necessary) the child of parent
// addressed by seg, converting parent's content in place when it is
// still a Hole and a concrete container shape is required.
func (b *builder) stepChild(parent NodeID, seg PathSegment, o token.Origin) (NodeID, *errors.CoreError) {
	pn := b.doc.Node(parent)
	if pn == nil {
		return 0, errors.Newf(errors.ExpectedMap, o, "no node to navigate from")
	}
	switch seg.Kind {
	case SegIdent, SegValue:
		if err := b.ensureMap(pn, o); err != nil {
			return 0, err
		}
		m := pn.Content.(*Map)
		key := seg.Value
		if seg.Kind == SegIdent {
			key = StringKey(seg.Ident)
		}
		if child, ok := m.Get(key); ok {
			return child, nil
		}
		child := b.doc.NewNode(Hole{})
		m.Set(key, child)
		b.doc.Origin.AddKey(parent, key, o)
		return child, nil
	case SegExtension:
		if child, ok := b.doc.Extension(parent, seg.Ident); ok {
			return child, nil
		}
		child := b.doc.NewNode(Hole{})
		b.doc.SetExtension(parent, seg.Ident, child)
		return child, nil
	case SegMetaExtension:
		if err := b.ensureMap(pn, o); err != nil {
			return 0, err
		}
		m := pn.Content.(*Map)
		if child, ok := m.GetMeta(seg.Ident); ok {
			return child, nil
		}
		child := b.doc.NewNode(Hole{})
		m.SetMeta(seg.Ident, child)
		return child, nil
	case SegArrayIndex:
		arr, err := b.ensureArray(pn, o)
		if err != nil {
			return 0, err
		}
		if seg.ArrayIndex == nil {
			child := b.doc.NewNode(Hole{})
			arr.Elems = append(arr.Elems, child)
			pn.Content = *arr
			return child, nil
		}
		idx := *seg.ArrayIndex
		for len(arr.Elems) <= idx {
			arr.Elems = append(arr.Elems, b.doc.NewNode(Hole{}))
		}
		pn.Content = *arr
		return arr.Elems[idx], nil
	case SegTupleIndex:
		tup, err := b.ensureTuple(pn, o)
		if err != nil {
			return 0, err
		}
		idx := int(seg.TupleIndex)
		for len(tup.Elems) <= idx {
			tup.Elems = append(tup.Elems, b.doc.NewNode(Hole{}))
		}
		pn.Content = *tup
		return tup.Elems[idx], nil
	default:
		return 0, errors.Newf(errors.InvalidIdentifier, o, "unsupported path segment")
	}
}

func (b *builder) ensureMap(n *Node, o token.Origin) *errors.CoreError {
	switch c := n.Content.(type) {
	case *Map:
		return nil
	case Hole:
		n.Content = NewMap()
		return nil
	case nil:
		n.Content = NewMap()
		return nil
	default:
		return errors.Newf(errors.ExpectedMap, o, "expected a map at this path, found %s", c.Kind())
	}
}

func (b *builder) ensureArray(n *Node, o token.Origin) (*Array, *errors.CoreError) {
	switch c := n.Content.(type) {
	case Array:
		a := c
		return &a, nil
	case Hole:
		a := Array{}
		n.Content = a
		return &a, nil
	case nil:
		a := Array{}
		n.Content = a
		return &a, nil
	default:
		return nil, errors.Newf(errors.ExpectedArray, o, "expected an array at this path, found %s", c.Kind())
	}
}

func (b *builder) ensureTuple(n *Node, o token.Origin) (*Tuple, *errors.CoreError) {
	switch c := n.Content.(type) {
	case Tuple:
		t := c
		return &t, nil
	case Hole:
		t := Tuple{}
		n.Content = t
		return &t, nil
	case nil:
		t := Tuple{}
		n.Content = t
		return &t, nil
	default:
		return nil, errors.Newf(errors.ExpectedTuple, o, "expected a tuple at this path, found %s", c.Kind())
	}
}

// mergeContent merges a freshly built subtree (newID) into target.
// Holes are overwritten silently. Two maps merge recursively, with
// sub-key conflicts raised as ConflictingTypes; any other shape clash
// at the top level is AlreadyAssigned. On a successful merge the
// extensions of newID are carried over to target as well.
func (b *builder) mergeContent(target, newID NodeID, o token.Origin, top bool) {
	tn := b.doc.Node(target)
	nn := b.doc.Node(newID)
	if tn == nil || nn == nil {
		return
	}
	newExts := nn.Extensions
	mergeExtensions := func() {
		for _, name := range sortedNames(newExts) {
			if cur, ok := b.doc.Extension(target, name); ok {
				b.mergeContent(cur, newExts[name], o, top)
			} else {
				b.doc.SetExtension(target, name, newExts[name])
			}
		}
	}
	if _, ok := tn.Content.(Hole); ok || tn.Content == nil {
		tn.Content = nn.Content
		b.doc.Origin.AddNode(target, o)
		mergeExtensions()
		return
	}
	tMap, tIsMap := tn.Content.(*Map)
	nMap, nIsMap := nn.Content.(*Map)
	if tIsMap && nIsMap {
		for _, e := range nMap.Entries() {
			sub, ok := tMap.Get(e.Key)
			if !ok {
				sub = b.doc.NewNode(Hole{})
				tMap.Set(e.Key, sub)
			}
			b.mergeContent(sub, e.Value, o, false)
		}
		for _, me := range nMap.MetaEntries() {
			sub, ok := tMap.GetMeta(me.Name)
			if !ok {
				sub = b.doc.NewNode(Hole{})
				tMap.SetMeta(me.Name, sub)
			}
			b.mergeContent(sub, me.Value, o, false)
		}
		b.doc.Origin.AddNode(target, o)
		mergeExtensions()
		return
	}
	if top {
		b.errf(o, errors.AlreadyAssigned, "value already assigned at this path")
	} else {
		b.errf(o, errors.ConflictingTypes, "conflicting types while merging maps at this path")
	}
}

// buildValue allocates a fresh node for a value CST node and returns
// its id; malformed values are recorded as errors and represented by
// an unlabelled Hole so the rest of the tree still builds.
func (b *builder) buildValue(v cst.NodeID) NodeID {
	n := b.tree.Node(v)
	if n == nil {
		return b.doc.NewNode(Hole{})
	}
	o := b.origin(n.Span)
	switch n.Kind {
	case cst.KindTrue:
		return b.newPrim(Primitive{PKind: PrimBool, Bool: true}, o)
	case cst.KindFalse:
		return b.newPrim(Primitive{PKind: PrimBool, Bool: false}, o)
	case cst.KindNull:
		return b.newPrim(Primitive{PKind: PrimNull}, o)
	case cst.KindInt:
		lit := strings.ReplaceAll(n.Lit, "_", "")
		var d *apd.Decimal
		if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
			i, ok := new(apd.BigInt).SetString(lit[2:], 16)
			if !ok {
				b.errf(o, errors.InvalidInteger, "invalid integer literal %q", n.Lit)
				return b.doc.NewNode(Hole{})
			}
			d = apd.NewWithBigInt(i, 0)
		} else {
			var err error
			d, _, err = apd.NewFromString(lit)
			if err != nil {
				b.errf(o, errors.InvalidInteger, "invalid integer literal %q", n.Lit)
				return b.doc.NewNode(Hole{})
			}
		}
		return b.newPrim(Primitive{PKind: PrimInt, Int: d}, o)
	case cst.KindFloat:
		return b.buildFloat(n.Lit, o)
	case cst.KindString:
		s, err := unquoteString(n.Lit)
		if err != nil {
			b.errf(o, errors.InvalidEscape, "invalid string literal: %v", err)
			return b.doc.NewNode(Hole{})
		}
		return b.newPrim(Primitive{PKind: PrimText, Text: Text{Lang: LangPlaintext, Value: s}}, o)
	case cst.KindImplicitText:
		return b.newPrim(Primitive{PKind: PrimText, Text: Text{Lang: LangImplicit, Value: stripBackticks(n.Lit)}}, o)
	case cst.KindLangText:
		lang, body := splitLangText(n.Lit)
		return b.newPrim(Primitive{PKind: PrimText, Text: Text{Lang: LangOther, Other: lang, Value: body}}, o)
	case cst.KindCodeBlock:
		lang, body := splitCodeBlock(n.Lit)
		return b.newPrim(Primitive{PKind: PrimText, Text: Text{Lang: LangOther, Other: lang, Value: body}}, o)
	case cst.KindHole:
		label := ""
		if children := b.tree.Children(v); len(children) > 1 {
			label = b.tree.Node(children[1]).Lit
		}
		id := b.doc.NewNode(Hole{Label: label})
		b.doc.Origin.AddNode(id, o)
		return id
	case cst.KindInlineMap:
		return b.buildInlineMap(v, o)
	case cst.KindInlineArray:
		return b.buildInlineArray(v, o)
	case cst.KindInlineTuple:
		return b.buildInlineTuple(v, o)
	case cst.KindExtIdent, cst.KindMetaExtIdent:
		b.errf(o, errors.InvalidIdentifier, "extension identifier is not a valid value")
		return b.doc.NewNode(Hole{})
	default:
		return b.doc.NewNode(Hole{})
	}
}

func (b *builder) newPrim(p Primitive, o token.Origin) NodeID {
	id := b.doc.NewNode(p)
	b.doc.Origin.AddNode(id, o)
	return id
}

func (b *builder) buildFloat(lit string, o token.Origin) NodeID {
	kind := PrimF64
	text := lit
	if strings.HasSuffix(text, "f32") {
		kind = PrimF32
		text = strings.TrimSuffix(text, "f32")
	} else if strings.HasSuffix(text, "f64") {
		text = strings.TrimSuffix(text, "f64")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		b.errf(o, errors.InvalidFloat, "invalid float literal %q", lit)
		return b.doc.NewNode(Hole{})
	}
	if kind == PrimF32 {
		return b.newPrim(Primitive{PKind: PrimF32, F32: float32(f)}, o)
	}
	return b.newPrim(Primitive{PKind: PrimF64, F64: f}, o)
}

func (b *builder) buildInlineMap(v cst.NodeID, o token.Origin) NodeID {
	id := b.doc.NewNode(NewMap())
	b.doc.Origin.AddNode(id, o)
	for _, c := range b.tree.Children(v) {
		cn := b.tree.Node(c)
		if cn.Kind == cst.KindBinding {
			b.processBinding(id, c)
		}
	}
	return id
}

func (b *builder) buildInlineArray(v cst.NodeID, o token.Origin) NodeID {
	arr := Array{}
	for _, c := range b.tree.Children(v) {
		cn := b.tree.Node(c)
		if isValueKind(cn.Kind) {
			arr.Elems = append(arr.Elems, b.buildValue(c))
		}
	}
	id := b.doc.NewNode(arr)
	b.doc.Origin.AddNode(id, o)
	return id
}

func (b *builder) buildInlineTuple(v cst.NodeID, o token.Origin) NodeID {
	tup := Tuple{}
	for _, c := range b.tree.Children(v) {
		cn := b.tree.Node(c)
		if isValueKind(cn.Kind) {
			tup.Elems = append(tup.Elems, b.buildValue(c))
		}
	}
	id := b.doc.NewNode(tup)
	b.doc.Origin.AddNode(id, o)
	return id
}

func isValueKind(k cst.Kind) bool {
	switch k {
	case cst.KindSymbol, cst.KindErrorTok, cst.KindError:
		return false
	}
	return true
}

func stripBackticks(lit string) string {
	if len(lit) >= 2 && strings.HasPrefix(lit, "`") && strings.HasSuffix(lit, "`") {
		return lit[1 : len(lit)-1]
	}
	return lit
}

// splitLangText splits a "lang`body`" literal into the language tag
// and the unwrapped body.
func splitLangText(lit string) (string, string) {
	i := strings.IndexByte(lit, '`')
	if i < 0 {
		return "", lit
	}
	lang := lit[:i]
	return lang, stripBackticks(lit[i:])
}

// splitCodeBlock splits a "```lang\nbody\n```" literal into the fence
// language and the body between the first newline and the closing
// fence.
func splitCodeBlock(lit string) (string, string) {
	inner := lit
	if strings.HasPrefix(inner, "```") {
		inner = inner[3:]
	}
	inner = strings.TrimSuffix(inner, "```")
	nl := strings.IndexByte(inner, '\n')
	if nl < 0 {
		return strings.TrimSpace(inner), ""
	}
	lang := strings.TrimSpace(inner[:nl])
	body := inner[nl+1:]
	body = strings.TrimSuffix(body, "\n")
	return lang, body
}

// unquoteString decodes a quoted EURE string literal (C-like escapes)
// using the standard library's escape grammar, which matches the
// scanner's accepted escape set.
func unquoteString(lit string) (string, error) {
	return strconv.Unquote(lit)
}
