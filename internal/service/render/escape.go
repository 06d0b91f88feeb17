package render

import (
	"golang.org/x/net/html"
)

// Escape neutralizes the HTML-significant characters of raw text. It must be applied once, to raw text only, before
// the text is embedded into any markup.
func Escape(text string) string {
	return html.EscapeString(text)
}
