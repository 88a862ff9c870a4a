package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"off":    LevelOff,
		"":       LevelOff,
		"ERROR":  LevelError,
		"phase":  LevelPhase,
		"detail": LevelDetail,
		"debug":  LevelDebug,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeFile) {
		t.Error("phase level must not emit file events")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) {
		t.Error("detail level emits file events")
	}
	if LevelDetail.ShouldEmit(ScopeNode) {
		t.Error("detail level must not emit node events")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Error("debug level emits everything")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	span := Begin(tr, ScopeDriver, "check", 0)
	Point(tr, ScopeFile, "scan:Foo.java", "2 markers", span.ID())
	Point(tr, ScopeNode, "decide", "dropped at detail", span.ID())
	span.WithExtra("files", "1").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ driver check") {
		t.Errorf("missing span begin in %q", out)
	}
	if !strings.Contains(out, "• file scan:Foo.java (2 markers)") {
		t.Errorf("missing file point in %q", out)
	}
	if strings.Contains(out, "decide") {
		t.Errorf("node event leaked at detail level: %q", out)
	}
	if !strings.Contains(out, "← driver check (ok) {files=1}") {
		t.Errorf("missing span end in %q", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Error(tr, ScopeConfig, "load-config", errors.New("boom"), 0)

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if ev["name"] != "load-config" || ev["detail"] != "boom" || ev["scope"] != "config" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestNopAndContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should yield Nop")
	}
	span := Begin(Nop, ScopeDriver, "x", 0)
	if span.End("") != 0 {
		t.Fatal("nop span has no duration")
	}

	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("tracer not propagated")
	}
	root := Begin(tr, ScopeDriver, "root", 0)
	ctx = WithSpan(ctx, root)
	if CurrentSpan(ctx) != root.ID() {
		t.Fatalf("CurrentSpan = %d, want %d", CurrentSpan(ctx), root.ID())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatal("off level must be disabled")
	}
}
