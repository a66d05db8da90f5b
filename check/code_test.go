package check

import (
	"testing"

	"github.com/kxue43/tech-blog/models"
)

func codeBlock(language, code string) models.CodeBlock {
	return models.CodeBlock{Language: language, Line: 1, Code: code}
}

func TestExtractCodeBlocks(t *testing.T) {
	markdown := `Intro paragraph.

` + "```python\nprint(\"hello\")\n```" + `

Some prose.

` + "```\nno language here\n```" + `
`
	blocks := ExtractCodeBlocks(markdown)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Language != "python" {
		t.Errorf("blocks[0].Language = %q, want python", blocks[0].Language)
	}
	if blocks[0].Code != "print(\"hello\")\n" {
		t.Errorf("blocks[0].Code = %q", blocks[0].Code)
	}
	if blocks[0].Line != 3 {
		t.Errorf("blocks[0].Line = %d, want 3", blocks[0].Line)
	}
	if blocks[1].Language != "" {
		t.Errorf("blocks[1].Language = %q, want empty", blocks[1].Language)
	}
}

func TestExtractCodeBlocks_NoBlocks(t *testing.T) {
	blocks := ExtractCodeBlocks("Just prose.\n\nMore prose with `inline code`.\n")
	if len(blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
}

func TestValidateCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		language string
		code     string
		wantOK   bool
	}{
		{"valid python", "python", "def f(x):\n    return x + 1\n", true},
		{"valid go", "go", "package main\n\nfunc main() {}\n", true},
		{"valid json", "json", `{"key": "value"}`, true},
		{"text opt-out", "text", "free-form $ output %%", true},
		{"plaintext opt-out", "plaintext", "anything goes", true},
		{"missing language", "", "whatever", false},
		{"unknown language", "klingon", "nuqneH", false},
		{"stray token", "python", "x = ?\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCodeBlock("/p/", codeBlock(tt.language, tt.code))
			if result.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v (reason: %s)", result.OK, tt.wantOK, result.Reason)
			}
			if !tt.wantOK && result.Reason == "" {
				t.Error("failed result should carry a reason")
			}
		})
	}
}

func TestLineOf(t *testing.T) {
	source := []byte("one\ntwo\nthree\n")
	tests := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{3, 1},
		{4, 2},
		{8, 3},
		{100, 4}, // clamped past the end
	}
	for _, tt := range tests {
		if got := lineOf(source, tt.offset); got != tt.want {
			t.Errorf("lineOf(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
