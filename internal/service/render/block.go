package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Block is a block-level construct of a document. The textual fields of every block are already escaped, and all
// but the code block are inline-formatted too.
type Block interface {
	html(b *strings.Builder)
}

// Heading is a '#', '##' or '###' line.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Paragraph is a line that matched no other construct.
type Paragraph struct {
	Text string
}

// List groups consecutive list items of the same kind.
type List struct {
	Ordered bool
	Start   int
	Items   []string
}

// Blockquote groups consecutive '> ' lines.
type Blockquote struct {
	Lines []string
}

// CodeBlock holds the verbatim lines of a fenced block.
type CodeBlock struct {
	Info  string
	Lines []string
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct{}

// BlankSeparator is an empty or whitespace-only line.
type BlankSeparator struct{}

func (h Heading) html(b *strings.Builder) {
	level := strconv.Itoa(h.Level)
	b.WriteString("<h" + level)
	if h.ID != "" {
		b.WriteString(` id="` + h.ID + `"`)
	}
	b.WriteString(">" + h.Text + "</h" + level + ">")
}

func (p Paragraph) html(b *strings.Builder) {
	b.WriteString("<p>" + p.Text + "</p>")
}

func (l List) html(b *strings.Builder) {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	b.WriteString("<" + tag)
	if l.Ordered && l.Start != 1 {
		b.WriteString(` start="` + strconv.Itoa(l.Start) + `"`)
	}
	b.WriteString(">")
	for _, item := range l.Items {
		b.WriteString("<li>" + item + "</li>")
	}
	b.WriteString("</" + tag + ">")
}

func (q Blockquote) html(b *strings.Builder) {
	b.WriteString("<blockquote>")
	for _, line := range q.Lines {
		b.WriteString("<p>" + line + "</p>")
	}
	b.WriteString("</blockquote>")
}

func (c CodeBlock) html(b *strings.Builder) {
	b.WriteString("<pre><code")
	if c.Info != "" {
		b.WriteString(` class="language-` + c.Info + `"`)
	}
	b.WriteString(">" + strings.Join(c.Lines, "\n") + "</code></pre>")
}

func (ThematicBreak) html(b *strings.Builder) {
	b.WriteString("<hr/>")
}

func (BlankSeparator) html(b *strings.Builder) {
	b.WriteString("<br/>")
}

const codeFence = "```"

var (
	thematicBreakRegex = regexp.MustCompile(`^-{3,}[ \t]*$`)
	headingRegex       = regexp.MustCompile(`^(#{1,3}) (.*)$`)
	orderedItemRegex   = regexp.MustCompile(`^(\d+)\. (.*)$`)
)

// scanner walks the lines of a document by index. Multi-line constructs are grouped by looking ahead from the
// current line until a line no longer belongs to them; the code block is the only one that may end with the input.
type scanner struct {
	lines     []string
	i         int
	headingID func(string) string
}

func (s *scanner) done() bool {
	return s.i >= len(s.lines)
}

func (s *scanner) next() Block {
	line := s.lines[s.i]

	if thematicBreakRegex.MatchString(line) {
		s.i++
		return ThematicBreak{}
	}

	if strings.HasPrefix(line, codeFence) {
		var info string
		if fields := strings.Fields(strings.TrimPrefix(line, codeFence)); len(fields) > 0 {
			info = fields[0]
		}
		return s.codeBlock(info)
	}

	if m := headingRegex.FindStringSubmatch(line); m != nil {
		s.i++
		h := Heading{Level: len(m[1]), Text: Format(Escape(m[2]))}
		if s.headingID != nil {
			h.ID = Escape(s.headingID(m[2]))
		}
		return h
	}

	if strings.HasPrefix(line, "> ") {
		return Blockquote{Lines: s.group(func(line string) (string, bool) {
			return strings.TrimPrefix(line, "> "), strings.HasPrefix(line, "> ")
		})}
	}

	if unorderedItem(line) {
		return List{Items: s.group(func(line string) (string, bool) {
			if !unorderedItem(line) {
				return "", false
			}
			return line[2:], true
		})}
	}

	if m := orderedItemRegex.FindStringSubmatch(line); m != nil {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			start = 1
		}
		return List{Ordered: true, Start: start, Items: s.group(func(line string) (string, bool) {
			m := orderedItemRegex.FindStringSubmatch(line)
			if m == nil {
				return "", false
			}
			return m[2], true
		})}
	}

	s.i++
	if strings.TrimSpace(line) == "" {
		return BlankSeparator{}
	}
	return Paragraph{Text: Format(Escape(line))}
}

// group consumes lines for as long as match accepts them and returns their formatted remainders. The current line is
// always accepted by the caller's classification.
func (s *scanner) group(match func(line string) (string, bool)) []string {
	var items []string
	for ; !s.done(); s.i++ {
		rest, ok := match(s.lines[s.i])
		if !ok {
			break
		}
		items = append(items, Format(Escape(rest)))
	}
	return items
}

// codeBlock consumes the opening fence, the verbatim lines and the closing fence if there is one.
func (s *scanner) codeBlock(info string) Block {
	block := CodeBlock{Info: Escape(info)}
	for s.i++; !s.done(); s.i++ {
		if strings.HasPrefix(s.lines[s.i], codeFence) {
			s.i++
			break
		}
		block.Lines = append(block.Lines, Escape(s.lines[s.i]))
	}
	return block
}

func unorderedItem(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}
