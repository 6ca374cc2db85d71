// Package markdown renders summary bodies for the history view.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// Render converts markdown-flavored summary text to HTML.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Preview returns a plain-text preview of the summary with markdown
// structure stripped, truncated to at most max bytes with an ellipsis.
// The cut never splits a multi-byte rune; summaries are emoji-heavy.
func Preview(source string, max int) string {
	plain := plainText(source)
	if max > 0 && len(plain) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(plain[cut]) {
			cut--
		}
		plain = plain[:cut] + "..."
	}
	return plain
}

// plainText walks the markdown AST and collects only the text content.
func plainText(source string) string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var parts []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			if segment := t.Segment; segment.Len() > 0 {
				parts = append(parts, string(segment.Value(src)))
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
