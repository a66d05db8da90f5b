package check

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/kxue43/tech-blog/models"
)

// ExtractCodeBlocks walks the Markdown AST of a post body and returns its
// fenced code blocks with their declared languages and source lines.
func ExtractCodeBlocks(markdown string) []models.CodeBlock {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []models.CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var code strings.Builder
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(source))
		}

		blocks = append(blocks, models.CodeBlock{
			Language: string(fence.Language(source)),
			Line:     fenceLine(source, fence),
			Code:     code.String(),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// fenceLine returns the 1-based source line of the opening fence.
// The first content segment's offset locates the block; the fence itself
// is the line above it. An empty block falls back to the info segment.
func fenceLine(source []byte, fence *ast.FencedCodeBlock) int {
	var offset int
	if lines := fence.Lines(); lines.Len() > 0 {
		offset = lines.At(0).Start
		return lineOf(source, offset) - 1
	}
	if fence.Info != nil {
		return lineOf(source, fence.Info.Segment.Start)
	}
	return 0
}

// lineOf converts a byte offset into a 1-based line number.
func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	for _, b := range source[:offset] {
		if b == '\n' {
			line++
		}
	}
	return line
}

// ValidateCodeBlock checks one fenced block: the fence must declare a
// language, the language must have a lexer, and lexing must produce no
// error tokens. The result carries the failure reason where applicable.
func ValidateCodeBlock(page string, block models.CodeBlock) models.CodeBlockResult {
	result := models.CodeBlockResult{
		Page:     page,
		Language: block.Language,
		Line:     block.Line,
	}

	if block.Language == "" {
		result.Reason = "fence has no language tag"
		return result
	}
	// "text"/"plaintext" fences are opt-outs: content is prose, not code.
	if block.Language == "text" || block.Language == "plaintext" {
		result.OK = true
		return result
	}

	lexer := lexers.Get(block.Language)
	if lexer == nil {
		result.Reason = "no lexer for language " + block.Language
		return result
	}

	iterator, err := lexer.Tokenise(nil, block.Code)
	if err != nil {
		result.Reason = "tokenise failed: " + err.Error()
		return result
	}

	for token := iterator(); token != chroma.EOF; token = iterator() {
		if token.Type == chroma.Error {
			result.Reason = "lexer error at " + strings.TrimSpace(truncate(token.Value, 40))
			return result
		}
	}

	result.OK = true
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
