package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"linemark/internal/markcfg"
	"linemark/internal/observ"
)

const fooJava = `package demo;

public class Foo {
    void run() {
        int x = 1;
        System.out.println(x);
    }
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	return dir
}

func parseConfig(t *testing.T, content string) *markcfg.Config {
	t.Helper()
	cfg, err := markcfg.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse marker config: %v", err)
	}
	return cfg
}

func TestRunFindsMarkers(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/demo/Foo.java":  fooJava,
		"src/demo/Bar.java":  strings.ReplaceAll(fooJava, "Foo", "Bar"),
		"src/demo/notes.txt": "Foo.java 5\n",
		".git/Foo.java":      fooJava,
	})
	report, err := Run(context.Background(), Options{
		Paths:  []string{dir},
		Config: parseConfig(t, "Foo.java 5\nFoo.java 6\nBar.java 3\n"),
		Jobs:   2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Files != 2 {
		t.Fatalf("Files = %d, want 2 (hidden dirs and non-Java files skipped)", report.Files)
	}
	type row struct {
		Name string
		Line int
		Node string
	}
	var got []row
	for _, h := range report.Hits {
		got = append(got, row{h.Name, h.Line, h.Node})
	}
	want := []row{
		{"Bar.java", 3, "class_declaration"},
		{"Foo.java", 5, "local_variable_declaration"},
		{"Foo.java", 6, "expression_statement"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hits mismatch (-want +got):\n%s", diff)
	}
	if report.Hits[1].Text != "int x = 1;" {
		t.Errorf("hit text = %q", report.Hits[1].Text)
	}
	if report.Hits[1].Col != 9 {
		t.Errorf("hit col = %d, want 9", report.Hits[1].Col)
	}
}

func TestRunTestdata(t *testing.T) {
	cfg, err := markcfg.LoadFile(filepath.Join("..", "..", "testdata", "marker", "marker"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	report, err := Run(context.Background(), Options{
		Paths:  []string{filepath.Join("..", "..", "testdata", "java")},
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	type row struct {
		Name string
		Line int
		Node string
	}
	var got []row
	for _, h := range report.Hits {
		got = append(got, row{h.Name, h.Line, h.Node})
	}
	// "public" под аннотацией открывает строку имени класса и тоже помечается
	want := []row{
		{"Annotated.java", 6, "public"},
		{"Annotated.java", 6, "class_declaration"},
		{"Annotated.java", 12, "local_variable_declaration"},
		{"Foo.java", 3, "class_declaration"},
		{"Foo.java", 5, "local_variable_declaration"},
		{"Foo.java", 6, "expression_statement"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hits mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRecordsPhases(t *testing.T) {
	dir := writeTree(t, map[string]string{"Foo.java": fooJava})
	timer := observ.NewTimer()
	if _, err := Run(context.Background(), Options{
		Paths:  []string{dir},
		Config: parseConfig(t, "Foo.java 5\n"),
		Timer:  timer,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var names []string
	for _, p := range timer.Report().Phases {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"list", "load", "parse"}, names); diff != "" {
		t.Fatalf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDisabledConfig(t *testing.T) {
	dir := writeTree(t, map[string]string{"Foo.java": fooJava})
	report, err := Run(context.Background(), Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Enabled || len(report.Hits) != 0 {
		t.Fatalf("disabled config produced %+v", report)
	}
}

func TestRunExplicitNonJavaFile(t *testing.T) {
	dir := writeTree(t, map[string]string{"Foo.kt": fooJava})
	report, err := Run(context.Background(), Options{
		Paths:  []string{filepath.Join(dir, "Foo.kt")},
		Config: parseConfig(t, "Foo.kt 5\n"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Files != 1 || len(report.Hits) != 0 {
		t.Fatalf("non-Java file produced %+v", report)
	}
}

func TestRunBaseDirDefaultsToWorkingDir(t *testing.T) {
	dir := writeTree(t, map[string]string{"Foo.java": fooJava})
	report, err := Run(context.Background(), Options{Paths: []string{dir}, Config: parseConfig(t, "Foo.java 6\n")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if report.baseDir != wd {
		t.Fatalf("report base = %q, want the working directory %q", report.baseDir, wd)
	}
}

func TestRunMissingPath(t *testing.T) {
	_, err := Run(context.Background(), Options{Paths: []string{filepath.Join(t.TempDir(), "nope")}})
	if err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestEncodeFormats(t *testing.T) {
	dir := writeTree(t, map[string]string{"Foo.java": fooJava})
	report, err := Run(context.Background(), Options{
		Paths:   []string{dir},
		Config:  parseConfig(t, "Foo.java 6\n"),
		BaseDir: dir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var text bytes.Buffer
	if err := report.Encode(&text, FormatText, EncodeOptions{PathMode: "relative"}); err != nil {
		t.Fatalf("encode text: %v", err)
	}
	if !strings.Contains(text.String(), "Foo.java:6:9  warning  System.out.println(x);") {
		t.Errorf("unexpected text output:\n%s", text.String())
	}
	if !strings.Contains(text.String(), "1 marker(s) in 1 file(s)") {
		t.Errorf("missing summary:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := report.Encode(&js, FormatJSON, EncodeOptions{}); err != nil {
		t.Fatalf("encode json: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded.Hits) != 1 || decoded.Hits[0].Line != 6 {
		t.Fatalf("json hits = %+v", decoded.Hits)
	}

	var mp bytes.Buffer
	if err := report.Encode(&mp, FormatMsgpack, EncodeOptions{}); err != nil {
		t.Fatalf("encode msgpack: %v", err)
	}
	back, err := DecodeMsgpack(&mp)
	if err != nil {
		t.Fatalf("DecodeMsgpack: %v", err)
	}
	if diff := cmp.Diff(report.Hits, back.Hits); diff != "" {
		t.Fatalf("msgpack hits mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "msgpack"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}
