// Package render turns user-authored plain text into safe markup.
//
// The pipeline has three stages. Parse splits the text into blocks, escaping every raw fragment and formatting its
// inline constructs. Assemble concatenates the markup of the blocks in document order. The assembled markup then goes
// through sanitizer.Sanitize, which strips anything executable no matter how it was produced.
//
// Everything here is a pure function of its input, so a Renderer can be shared by concurrent callers.
package render

import (
	"strings"

	"nitro/markdown-render/internal/service/sanitizer"
)

// Renderer holds the rendering options. The zero value is ready to use.
type Renderer struct {
	// HeadingID derives the id attribute of a heading from its raw text. Headings carry no id when nil.
	HeadingID func(text string) string
}

// Render is Renderer.Render with the default options.
func Render(text string) string {
	return Renderer{}.Render(text)
}

// Render converts the text into a markup fragment safe for direct insertion into a page. It never fails: input
// that matches no construct is rendered as plain paragraphs.
func (r Renderer) Render(text string) string {
	return sanitizer.Sanitize(Assemble(r.Parse(text)))
}

// Parse splits the text into blocks. Empty text has no blocks.
func (r Renderer) Parse(text string) []Block {
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "\uFFFD")
	text = strings.TrimSuffix(text, "\n")

	s := scanner{lines: strings.Split(text, "\n"), headingID: r.HeadingID}
	var blocks []Block
	for !s.done() {
		blocks = append(blocks, s.next())
	}
	return blocks
}

// Assemble joins the markup of the blocks, one block per line.
func Assemble(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		block.html(&b)
	}
	return b.String()
}
