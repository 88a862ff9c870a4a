package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersions(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("src/Foo.java", []byte("class Foo {}\n"), 0)
	second := fs.Add("src/./Foo.java", []byte("class Foo {\n}\n"), 0)

	if first == second {
		t.Fatalf("re-adding a path must create a new version, got id %d twice", first)
	}
	if fs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", fs.Len())
	}
	file := fs.Get(second)
	if file.ID != second || file.Path != "src/Foo.java" || len(file.LineIdx) != 2 {
		t.Fatalf("Get(%d) returned %+v", second, file)
	}
	if len(fs.Get(first).LineIdx) != 1 {
		t.Error("the first version must keep its own line index")
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.java")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFclass Foo {\r\n}\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "class Foo {\n}\n" {
		t.Fatalf("content = %q", file.Content)
	}
	if file.Flags != FileHadBOM|FileNormalizedCRLF {
		t.Fatalf("flags = %b", file.Flags)
	}
	if fs.BaseDir() != dir {
		t.Fatalf("BaseDir() = %q, want %q", fs.BaseDir(), dir)
	}
	if wd, err := os.Getwd(); err == nil && NewFileSet().BaseDir() != wd {
		t.Fatalf("BaseDir() without a base = %q, want the working directory %q", NewFileSet().BaseDir(), wd)
	}

	if _, err := fs.Load(filepath.Join(dir, "Missing.java")); !os.IsNotExist(err) {
		t.Fatalf("Load of a missing file: %v", err)
	}
}

func TestPosition(t *testing.T) {
	fs := NewFileSet()
	// α занимает 2 байта: колонки считаются в байтах
	file := fs.Get(fs.AddVirtual("Test.java", []byte("α\nb")))
	if got := file.Position(3); got != (LineCol{Line: 2, Col: 1}) {
		t.Fatalf("Position(3) = %+v", got)
	}
	if got := file.Position(2); got != (LineCol{Line: 1, Col: 3}) {
		t.Fatalf("Position(2) = %+v", got)
	}
	if got := file.Position(99); got != (LineCol{Line: 2, Col: 2}) {
		t.Fatalf("Position past end = %+v, want clamped", got)
	}
}

func TestLineOf(t *testing.T) {
	fs := NewFileSet()
	content := "class Foo {\n  void run() {\n    go();\n  }\n}\n"
	file := fs.Get(fs.AddVirtual("Foo.java", []byte(content)))

	tests := []struct {
		name   string
		offset uint32
		want   int
	}{
		{"start of file", 0, 1},
		{"end of first line", 10, 1},
		{"newline belongs to its line", 11, 1},
		{"start of second line", 12, 2},
		{"inside third line", 30, 3},
		{"past the end clamps", 10_000, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := file.LineOf(tt.offset); got != tt.want {
				t.Fatalf("LineOf(%d) = %d, want %d", tt.offset, got, tt.want)
			}
		})
	}
	if file.LineCount() != 6 {
		t.Errorf("LineCount() = %d, want 6", file.LineCount())
	}
}

func TestAddVirtualNormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("Foo.java", []byte("a\r\nb\r\n")))
	if string(file.Content) != "a\nb\n" {
		t.Fatalf("content = %q, want normalized", file.Content)
	}
	if file.Flags&FileNormalizedCRLF == 0 || file.Flags&FileVirtual == 0 {
		t.Fatalf("flags = %b, want virtual and CRLF", file.Flags)
	}
	if file.LineOf(2) != 2 {
		t.Fatalf("LineOf(2) = %d, want 2", file.LineOf(2))
	}
}

func TestAddVirtualLoneCR(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("Foo.java", []byte("a\rb\r\nc")))
	if string(file.Content) != "a\nb\nc" {
		t.Fatalf("content = %q, want every break as LF", file.Content)
	}
	if file.Flags&FileNormalizedCR == 0 {
		t.Fatalf("flags = %b, want FileNormalizedCR", file.Flags)
	}
	if file.LineCount() != 3 || file.LineOf(2) != 2 {
		t.Fatalf("LineCount() = %d, LineOf(2) = %d; want 3 and 2", file.LineCount(), file.LineOf(2))
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("Foo.java", []byte("one\ntwo\nthree")))
	cases := map[uint32]string{0: "", 1: "one", 2: "two", 3: "three", 4: ""}
	for line, want := range cases {
		if got := file.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestNameAndFormatPath(t *testing.T) {
	fs := NewFileSet()
	path := filepath.Join(t.TempDir(), "pkg", "Foo.java")
	file := fs.Get(fs.Add(path, nil, 0))
	if file.Name() != "Foo.java" {
		t.Fatalf("Name() = %q, want Foo.java", file.Name())
	}
	if got := file.FormatPath("basename", ""); got != "Foo.java" {
		t.Fatalf("basename = %q", got)
	}
	if got := file.FormatPath("relative", filepath.Dir(filepath.Dir(path))); got != "pkg/Foo.java" {
		t.Fatalf("relative = %q", got)
	}
}
