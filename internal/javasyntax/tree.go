// Package javasyntax hosts marker decisions over tree-sitter Java syntax trees.
package javasyntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"linemark/internal/marker"
	"linemark/internal/source"
)

const rootType = "program"

const edgeType = "whitespace"

// Tree is a parsed document. It implements marker.Tree for Node handles.
type Tree struct {
	file     *source.File
	tree     *sitter.Tree
	language string
}

var _ marker.Tree[Node] = (*Tree)(nil)

// Node is the handle the marker rule works with: a syntax node, or the edge
// where a previous sibling ends.
//
// Tree-sitter keeps the whitespace between siblings out of the tree, while the
// IDE tree has a whitespace node there. An edge stands in for it: its line is
// the line the previous sibling ends on. When two siblings touch, the edge sits
// on the line of the node that follows, so the later one never represents it.
type Node struct {
	syn  *sitter.Node
	edge bool // syn is the previous sibling, the handle is its end
}

// Syntax returns the tree-sitter node behind the handle. For an edge this is
// the sibling that ends there.
func (n Node) Syntax() *sitter.Node { return n.syn }

// IsEdge reports whether the handle is the end of a previous sibling.
func (n Node) IsEdge() bool { return n.edge }

// Type returns the node type. Edges report "whitespace".
func (n Node) Type() string {
	if !n.valid() {
		return ""
	}
	if n.edge {
		return edgeType
	}
	return n.syn.Type()
}

// Offset is the byte offset the line of the handle is read from.
func (n Node) Offset() uint32 {
	if n.edge {
		return n.syn.EndByte()
	}
	return TextOffset(n.syn)
}

func (n Node) valid() bool {
	return n.syn != nil && !n.syn.IsNull()
}

// Parse builds the syntax tree of file. language is the id every node reports;
// the grammar is always Java, other languages simply never match a provider.
func Parse(ctx context.Context, file *source.File, language string) (*Tree, error) {
	if file == nil {
		return nil, fmt.Errorf("parse: nil file")
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	return &Tree{file: file, tree: tree, language: language}, nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
	}
}

// File returns the document the tree was parsed from.
func (t *Tree) File() *source.File { return t.file }

// Root returns the file-level node.
func (t *Tree) Root() Node { return Node{syn: t.tree.RootNode()} }

// Walk visits every syntax node, named or not, in pre-order. Edges are never
// visited. Returning false stops the walk.
func (t *Tree) Walk(fn func(n Node) bool) {
	stack := []*sitter.Node{t.tree.RootNode()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || n.IsNull() {
			continue
		}
		if !fn(Node{syn: n}) {
			return
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
}

// TextOffset mirrors the IDE notion of a node's text offset: the start of the
// name identifier for declarations, the node's own start otherwise.
func TextOffset(n *sitter.Node) uint32 {
	if !strings.HasSuffix(n.Type(), "_declaration") {
		return n.StartByte()
	}
	if name := n.ChildByFieldName("name"); name != nil && !name.IsNull() {
		return name.StartByte()
	}
	return n.StartByte()
}

func (t *Tree) LineNumber(n Node) (int, bool) {
	if !n.valid() || t.file == nil {
		return 0, false
	}
	return t.file.LineOf(n.Offset()), true
}

func (t *Tree) Parent(n Node) (Node, bool) {
	if !n.valid() {
		return Node{}, false
	}
	p := Node{syn: n.syn.Parent()}
	return p, p.valid()
}

// PrevSibling returns the edge of the previous sibling. The edge of an edge
// is the sibling itself.
func (t *Tree) PrevSibling(n Node) (Node, bool) {
	if !n.valid() {
		return Node{}, false
	}
	if n.edge {
		return Node{syn: n.syn}, true
	}
	prev := Node{syn: n.syn.PrevSibling(), edge: true}
	return prev, prev.valid()
}

func (t *Tree) IsFileRoot(n Node) bool {
	if !n.valid() || n.edge || n.syn.Type() != rootType {
		return false
	}
	_, hasParent := t.Parent(n)
	return !hasParent
}

func (t *Tree) ContainingFileName(Node) string {
	return t.file.Name()
}

func (t *Tree) LanguageID(Node) string {
	return t.language
}

// Markers feeds every node to p and returns the markers it produced, in document order.
func (t *Tree) Markers(p *marker.Provider[Node]) []marker.Marker[Node] {
	var out []marker.Marker[Node]
	t.Walk(func(n Node) bool {
		if m, ok := p.Decide(n); ok {
			out = append(out, m)
		}
		return true
	})
	return out
}

// LanguageForPath derives the language id from a file extension.
func LanguageForPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "TEXT"
	}
	if strings.EqualFold(ext, "java") {
		return marker.LanguageJava
	}
	return strings.ToUpper(ext)
}

// LanguageForLSP maps an LSP languageId such as "java" to a language id.
func LanguageForLSP(id string) string {
	if strings.EqualFold(id, "java") {
		return marker.LanguageJava
	}
	return strings.ToUpper(id)
}
