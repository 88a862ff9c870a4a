package lsp

import "testing"

func TestOffsetForPosition(t *testing.T) {
	const text = "ab\nП😀x\n"
	tests := []struct {
		pos  position
		want int
	}{
		{position{0, 0}, 0},
		{position{0, 2}, 2},
		{position{0, 9}, 2},  // past line end stops at the newline
		{position{1, 1}, 5},  // П is one UTF-16 unit, two bytes
		{position{1, 2}, 5},  // inside the surrogate pair
		{position{1, 3}, 9},  // after 😀
		{position{1, 4}, 10}, // after x
		{position{2, 0}, 11},
		{position{7, 0}, 11},
		{position{-1, 3}, 0},
	}
	for _, tt := range tests {
		if got := offsetForPosition(text, tt.pos); got != tt.want {
			t.Errorf("offsetForPosition(%+v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestOffsetForPositionCR(t *testing.T) {
	const text = "ab\r\ncd\ref\n"
	tests := []struct {
		pos  position
		want int
	}{
		{position{0, 5}, 2}, // stops before "\r\n"
		{position{1, 0}, 4},
		{position{1, 9}, 6}, // stops before the lone "\r"
		{position{2, 1}, 8},
		{position{3, 0}, 10},
	}
	for _, tt := range tests {
		if got := offsetForPosition(text, tt.pos); got != tt.want {
			t.Errorf("offsetForPosition(%+v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestApplyChanges(t *testing.T) {
	text := "class A {\n}\n"
	text = applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{1, 0}, End: position{1, 0}}, Text: "  int x;\n"},
		{Range: &lspRange{Start: position{0, 6}, End: position{0, 7}}, Text: "Foo"},
	})
	if want := "class Foo {\n  int x;\n}\n"; text != want {
		t.Fatalf("got %q, want %q", text, want)
	}

	text = applyChanges(text, []textDocumentContentChangeEvent{{Text: "class B {}"}})
	if text != "class B {}" {
		t.Fatalf("full replace: got %q", text)
	}

	// перевёрнутый диапазон вставляет, ничего не удаляя
	text = applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{0, 9}, End: position{0, 2}}, Text: " "},
	})
	if text != "class B { }" {
		t.Fatalf("reversed range: got %q", text)
	}
}
