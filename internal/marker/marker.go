// Package marker decides which syntax node of a line carries the gutter marker.
//
// A source line usually holds many nested nodes: a statement, its expression,
// the identifiers inside. Only the node whose line differs from both its
// parent's line and its previous sibling's line represents the line, so a
// marked line is decorated exactly once.
package marker

import "linemark/internal/markcfg"

// LanguageJava is the only language id markers are produced for.
const LanguageJava = "JAVA"

// NoLine is the line reported for absent, file-level or unresolvable nodes.
const NoLine = -1

// Tree exposes the host capabilities the decision needs. N is the host's node handle.
// Accessors report false instead of failing when the host has nothing to give.
type Tree[N any] interface {
	// LineNumber returns the one-based line of the node's text offset.
	LineNumber(n N) (int, bool)
	Parent(n N) (N, bool)
	PrevSibling(n N) (N, bool)
	IsFileRoot(n N) bool
	// ContainingFileName returns the bare file name, without directories.
	ContainingFileName(n N) string
	LanguageID(n N) string
}

// IconKind names the gutter icon the host should paint.
type IconKind uint8

const (
	// IconWarning is the warning sign used for every marker.
	IconWarning IconKind = iota + 1
)

func (k IconKind) String() string {
	switch k {
	case IconWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Marker describes a gutter marker anchored at Target.
type Marker[N any] struct {
	Target N
	File   string
	Line   int
	Icon   IconKind
}

// Provider answers marker queries for one loaded config.
// It holds no mutable state and may be shared between goroutines.
type Provider[N any] struct {
	tree     Tree[N]
	config   *markcfg.Config
	language string
}

// NewProvider builds a provider for the Java language.
func NewProvider[N any](tree Tree[N], cfg *markcfg.Config) *Provider[N] {
	return NewProviderForLanguage(tree, cfg, LanguageJava)
}

// NewProviderForLanguage builds a provider that only marks nodes reporting language.
func NewProviderForLanguage[N any](tree Tree[N], cfg *markcfg.Config, language string) *Provider[N] {
	if cfg == nil {
		cfg = markcfg.Disabled()
	}
	return &Provider[N]{tree: tree, config: cfg, language: language}
}

// Decide returns the marker for node, if its representative line is marked.
func (p *Provider[N]) Decide(node N) (Marker[N], bool) {
	var none Marker[N]
	if !p.config.Loaded() {
		return none, false
	}
	if p.tree.LanguageID(node) != p.language {
		return none, false
	}
	if !p.insideFile(node) {
		return none, false
	}
	if p.tree.IsFileRoot(node) {
		return none, false
	}

	line := p.RepresentedLine(node)
	if line == NoLine {
		// не представитель своей строки
		return none, false
	}
	name := p.tree.ContainingFileName(node)
	if !p.config.Contains(name, line) {
		return none, false
	}
	return Marker[N]{Target: node, File: name, Line: line, Icon: IconWarning}, true
}

// RepresentedLine returns the node's line if it represents that line, NoLine otherwise.
func (p *Provider[N]) RepresentedLine(node N) int {
	line := p.lineOf(node, true)
	parent, hasParent := p.tree.Parent(node)
	prev, hasPrev := p.tree.PrevSibling(node)
	parentLine := p.lineOf(parent, hasParent)
	prevLine := p.lineOf(prev, hasPrev)

	if parentLine == line || prevLine == line {
		return NoLine
	}
	return line
}

func (p *Provider[N]) lineOf(n N, present bool) int {
	if !present || p.tree.IsFileRoot(n) {
		return NoLine
	}
	line, ok := p.tree.LineNumber(n)
	if !ok {
		return NoLine
	}
	return line
}

// insideFile walks the parent chain looking for a file root. The node itself is not checked.
func (p *Provider[N]) insideFile(node N) bool {
	cur, ok := p.tree.Parent(node)
	for ok {
		if p.tree.IsFileRoot(cur) {
			return true
		}
		cur, ok = p.tree.Parent(cur)
	}
	return false
}
