package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderProducesHTML(t *testing.T) {
	html, err := Render("## Heading\n\n* one\n* two\n\n**bold**")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h2>", "<ul>", "<li>one</li>", "<strong>bold</strong>"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q:\n%s", want, html)
		}
	}
}

func TestPreviewStripsMarkdown(t *testing.T) {
	source := "# Title\n\nSome **bold** text and *italic* too.\n\n- item one\n- item two"
	got := Preview(source, 0)
	for _, marker := range []string{"#", "*", "-"} {
		if strings.Contains(got, marker) {
			t.Errorf("preview %q still contains %q", got, marker)
		}
	}
	for _, want := range []string{"Title", "bold", "item one"} {
		if !strings.Contains(got, want) {
			t.Errorf("preview %q lost the text %q", got, want)
		}
	}
}

func TestPreviewTruncatesWithEllipsis(t *testing.T) {
	source := strings.Repeat("word ", 100)
	got := Preview(source, 150)
	if len(got) != 153 {
		t.Errorf("len = %d, want 150 + ellipsis", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("preview %q not ellipsized", got)
	}
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	// The cut point lands inside the 4-byte emoji.
	source := strings.Repeat("a", 149) + "🥘 Ingredients"
	got := Preview(source, 150)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("a", 149) + "..."; got != want {
		t.Errorf("preview = %q, want the emoji dropped whole", got)
	}

	// A cut point on a rune boundary keeps the rune.
	got = Preview(strings.Repeat("a", 146)+"🥘🥘", 150)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "🥘") {
		t.Errorf("preview %q lost a rune that fit", got)
	}
}

func TestPreviewShortTextUntouched(t *testing.T) {
	if got := Preview("short text", 150); got != "short text" {
		t.Errorf("got %q", got)
	}
}
