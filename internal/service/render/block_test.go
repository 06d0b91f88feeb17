package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRendererParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message  string
		text     string
		expected []Block
	}{
		{
			message:  "return no block for an empty text",
			text:     "",
			expected: nil,
		},
		{
			message:  "parse the heading levels",
			text:     "# one\n## two\n### three",
			expected: []Block{Heading{Level: 1, Text: "one"}, Heading{Level: 2, Text: "two"}, Heading{Level: 3, Text: "three"}},
		},
		{
			message:  "parse a fourth level heading as a paragraph",
			text:     "#### four",
			expected: []Block{Paragraph{Text: "#### four"}},
		},
		{
			message:  "parse a hash without a space as a paragraph",
			text:     "#tag",
			expected: []Block{Paragraph{Text: "#tag"}},
		},
		{
			message:  "group unordered items into a single list",
			text:     "- a\n* b\n- c",
			expected: []Block{List{Items: []string{"a", "b", "c"}}},
		},
		{
			message:  "group ordered items into a single list",
			text:     "1. a\n2. b",
			expected: []Block{List{Ordered: true, Start: 1, Items: []string{"a", "b"}}},
		},
		{
			message:  "keep the first number of an ordered list",
			text:     "3. c",
			expected: []Block{List{Ordered: true, Start: 3, Items: []string{"c"}}},
		},
		{
			message: "split lists of different kinds",
			text:    "- a\n1. b",
			expected: []Block{
				List{Items: []string{"a"}},
				List{Ordered: true, Start: 1, Items: []string{"b"}},
			},
		},
		{
			message:  "group blockquote lines",
			text:     "> one\n> *two*\nafter",
			expected: []Block{Blockquote{Lines: []string{"one", "<em>two</em>"}}, Paragraph{Text: "after"}},
		},
		{
			message:  "parse a thematic break",
			text:     "---\n-----  ",
			expected: []Block{ThematicBreak{}, ThematicBreak{}},
		},
		{
			message:  "parse two dashes as a paragraph",
			text:     "--",
			expected: []Block{Paragraph{Text: "--"}},
		},
		{
			message:  "collect a fenced code block with its info string",
			text:     "```go\nx := <-ch\n\n*y*\n```\nafter",
			expected: []Block{CodeBlock{Info: "go", Lines: []string{"x := &lt;-ch", "", "*y*"}}, Paragraph{Text: "after"}},
		},
		{
			message:  "close an unterminated code block at the end of the input",
			text:     "```\nline1\nline2",
			expected: []Block{CodeBlock{Lines: []string{"line1", "line2"}}},
		},
		{
			message:  "parse an empty code block",
			text:     "```\n```",
			expected: []Block{CodeBlock{}},
		},
		{
			message:  "separate paragraphs with blank lines",
			text:     "a\n\n  \nb",
			expected: []Block{Paragraph{Text: "a"}, BlankSeparator{}, BlankSeparator{}, Paragraph{Text: "b"}},
		},
		{
			message:  "treat the trailing newline as a line terminator",
			text:     "a\n",
			expected: []Block{Paragraph{Text: "a"}},
		},
		{
			message:  "accept windows line endings",
			text:     "a\r\nb",
			expected: []Block{Paragraph{Text: "a"}, Paragraph{Text: "b"}},
		},
		{
			message:  "escape and format paragraphs",
			text:     "<b>**x**</b>",
			expected: []Block{Paragraph{Text: "&lt;b&gt;<strong>x</strong>&lt;/b&gt;"}},
		},
	}

	for i := 0; i < len(tests); i++ {
		tt := tests[i]
		t.Run("Should "+tt.message, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, Renderer{}.Parse(tt.text))
		})
	}
}

func TestRendererParseHeadingID(t *testing.T) {
	t.Parallel()

	r := Renderer{HeadingID: func(text string) string {
		return strings.ToLower(strings.ReplaceAll(text, " ", "-"))
	}}
	require.Equal(t, []Block{Heading{Level: 2, ID: "a-&lt;title&gt;", Text: "A &lt;Title&gt;"}}, r.Parse("## A <Title>"))
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		Heading{Level: 1, ID: "t", Text: "T"},
		BlankSeparator{},
		Blockquote{Lines: []string{"q"}},
		ThematicBreak{},
		List{Ordered: true, Start: 2, Items: []string{"x"}},
		CodeBlock{Info: "go", Lines: []string{"a", "b"}},
		Paragraph{Text: "p"},
	}
	expected := strings.Join([]string{
		`<h1 id="t">T</h1>`,
		"<br/>",
		"<blockquote><p>q</p></blockquote>",
		"<hr/>",
		`<ol start="2"><li>x</li></ol>`,
		`<pre><code class="language-go">a` + "\n" + `b</code></pre>`,
		"<p>p</p>",
	}, "\n")
	require.Equal(t, expected, Assemble(blocks))
	require.Equal(t, "", Assemble(nil))
}
