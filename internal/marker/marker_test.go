package marker

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"linemark/internal/markcfg"
)

type fakeNode struct {
	line     int
	parent   *fakeNode
	prev     *fakeNode
	fileRoot bool
	fileName string
	language string
	noLine   bool
}

type fakeTree struct{}

func (fakeTree) LineNumber(n *fakeNode) (int, bool) {
	if n == nil || n.noLine {
		return 0, false
	}
	return n.line, true
}

func (fakeTree) Parent(n *fakeNode) (*fakeNode, bool) {
	if n == nil || n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

func (fakeTree) PrevSibling(n *fakeNode) (*fakeNode, bool) {
	if n == nil || n.prev == nil {
		return nil, false
	}
	return n.prev, true
}

func (fakeTree) IsFileRoot(n *fakeNode) bool { return n != nil && n.fileRoot }

func (fakeTree) ContainingFileName(n *fakeNode) string {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.fileRoot {
			return cur.fileName
		}
	}
	return ""
}

func (fakeTree) LanguageID(n *fakeNode) string {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.language != "" {
			return cur.language
		}
	}
	return ""
}

func loadConfig(t *testing.T, content string) *markcfg.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marker")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write marker file: %v", err)
	}
	cfg, ok := markcfg.Load(path)
	if !ok {
		t.Fatalf("load %s failed", path)
	}
	return cfg
}

func javaFile(name string) *fakeNode {
	return &fakeNode{fileRoot: true, fileName: name, language: LanguageJava}
}

// statement builds a class body whose statement starts on line.
func statement(file *fakeNode, line int) *fakeNode {
	class := &fakeNode{line: 1, parent: file}
	return &fakeNode{line: line, parent: class}
}

func TestDecideMarksRepresentativeNode(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)

	node := statement(javaFile("Foo.java"), 10)
	m, ok := p.Decide(node)
	if !ok {
		t.Fatal("expected a marker")
	}
	if m.Target != node {
		t.Fatalf("marker target = %p, want %p", m.Target, node)
	}
	if m.File != "Foo.java" || m.Line != 10 || m.Icon != IconWarning {
		t.Fatalf("unexpected marker %+v", m)
	}
}

func TestDecideOtherFileNotMarked(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	if _, ok := p.Decide(statement(javaFile("Bar.java"), 10)); ok {
		t.Fatal("Bar.java is not in the config")
	}
}

func TestDecideOtherLineNotMarked(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	if _, ok := p.Decide(statement(javaFile("Foo.java"), 11)); ok {
		t.Fatal("line 11 is not marked")
	}
}

func TestDecideLanguageMismatch(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	file := javaFile("Foo.java")
	file.language = "kotlin"
	if _, ok := p.Decide(statement(file, 10)); ok {
		t.Fatal("non-Java nodes are never marked")
	}
}

func TestDecideDisabledConfig(t *testing.T) {
	cfg, ok := markcfg.Load(filepath.Join(t.TempDir(), "missing"))
	if ok {
		t.Fatal("expected missing file to disable markers")
	}
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	if _, ok := p.Decide(statement(javaFile("Foo.java"), 10)); ok {
		t.Fatal("disabled config never marks")
	}

	nilCfg := NewProvider[*fakeNode](fakeTree{}, nil)
	if _, ok := nilCfg.Decide(statement(javaFile("Foo.java"), 10)); ok {
		t.Fatal("nil config behaves as disabled")
	}
}

func TestDecideDetachedNode(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	orphanParent := &fakeNode{line: 1, language: LanguageJava}
	orphan := &fakeNode{line: 10, parent: orphanParent}
	if _, ok := p.Decide(orphan); ok {
		t.Fatal("nodes without a file ancestor are never marked")
	}
}

func TestDecideFileRoot(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 1\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	file := javaFile("Foo.java")
	file.line = 1
	if _, ok := p.Decide(file); ok {
		t.Fatal("file roots are never marked")
	}
}

func TestDecideUnresolvableLine(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	node := statement(javaFile("Foo.java"), 10)
	node.noLine = true
	if _, ok := p.Decide(node); ok {
		t.Fatal("a node without a document line is never marked")
	}
}

func TestRepresentedLine(t *testing.T) {
	p := NewProvider[*fakeNode](fakeTree{}, markcfg.Disabled())
	file := javaFile("Foo.java")
	block := &fakeNode{line: 4, parent: file}
	y := &fakeNode{line: 5, parent: block}
	x := &fakeNode{line: 6, parent: block, prev: y}
	xChild := &fakeNode{line: 6, parent: x}
	sameAsPrev := &fakeNode{line: 6, parent: block, prev: x}
	firstInFile := &fakeNode{line: 1, parent: file}

	tests := []struct {
		name string
		node *fakeNode
		want int
	}{
		{"first child on a new line", y, 5},
		{"sibling on a different line", x, 6},
		{"child on its parent's line", xChild, NoLine},
		{"sibling on the previous sibling's line", sameAsPrev, NoLine},
		{"parent is the file", firstInFile, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.RepresentedLine(tt.node); got != tt.want {
				t.Fatalf("RepresentedLine() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Only the immediate previous sibling is compared, so a run a-b-c with a and c on
// one line and b elsewhere leaves both a and c representative.
func TestRepresentedLineOnlyImmediateSibling(t *testing.T) {
	p := NewProvider[*fakeNode](fakeTree{}, markcfg.Disabled())
	block := &fakeNode{line: 1, parent: javaFile("Foo.java")}
	a := &fakeNode{line: 3, parent: block}
	b := &fakeNode{line: 2, parent: block, prev: a}
	c := &fakeNode{line: 3, parent: block, prev: b}
	if got := p.RepresentedLine(a); got != 3 {
		t.Fatalf("a: got %d, want 3", got)
	}
	if got := p.RepresentedLine(c); got != 3 {
		t.Fatalf("c: got %d, want 3", got)
	}
}

func TestDecideConcurrentReads(t *testing.T) {
	cfg := loadConfig(t, "Foo.java 10\n")
	p := NewProvider[*fakeNode](fakeTree{}, cfg)
	node := statement(javaFile("Foo.java"), 10)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := p.Decide(node); !ok {
				errs <- "expected marker"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
