package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns value with all markup removed and entities decoded.
// Falsy input (nil, "", non-string) yields nil.
func StripHTML(value any) *string {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// The HTML tokenizer accepts any input; keep the raw text rather than drop it.
		return &s
	}

	// Line breaks would otherwise glue adjacent lines together.
	doc.Find("br").ReplaceWithHtml("\n")

	text := strings.TrimSpace(doc.Text())
	return &text
}
