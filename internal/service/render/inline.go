package render

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// placeholder wraps the index of a protected fragment. NUL never survives Render's input normalization, so a
// placeholder can't collide with user text.
const placeholder = "\x00"

var (
	codeSpanRegex    = regexp.MustCompile("`([^`]+)`")
	boldRegex        = regexp.MustCompile(`\*\*(\S(?:.*?\S)?)\*\*|__(\S(?:.*?\S)?)__`)
	italicRegex      = regexp.MustCompile(`\*(\S(?:.*?\S)?)\*|_(\S(?:.*?\S)?)_`)
	highlightRegex   = regexp.MustCompile(`==(\S(?:.*?\S)?)==`)
	strikeRegex      = regexp.MustCompile(`~~(\S(?:.*?\S)?)~~`)
	linkRegex        = regexp.MustCompile(`\[([^\[\]]+)\]\(([^()\s<>\x00]+)\)`)
	linkSchemeRegex  = regexp.MustCompile(`(?i)^https?://`)
	placeholderRegex = regexp.MustCompile(`\x00(\d+)\x00`)
	tagRegex         = regexp.MustCompile(`<(/?)([a-z]+)[^>]*>`)
)

// Format applies the inline rules to text that was already escaped. The rules run in a fixed order: code span, bold,
// italic, highlight, strikethrough and link. Code spans are lifted out before anything else runs and restored at the
// end, so their content never reaches the other rules.
func Format(escaped string) string {
	var protected []string
	text := codeSpanRegex.ReplaceAllStringFunc(escaped, func(match string) string {
		protected = append(protected, "<code>"+match[1:len(match)-1]+"</code>")
		return placeholder + strconv.Itoa(len(protected)-1) + placeholder
	})

	text = replaceSpans(text, boldRegex, "strong")
	text = replaceSpans(text, italicRegex, "em")
	text = replaceSpans(text, highlightRegex, "mark")
	text = replaceSpans(text, strikeRegex, "del")
	text = replaceLinks(text)

	if len(protected) == 0 {
		return text
	}
	return placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		index, err := strconv.Atoi(strings.Trim(match, placeholder))
		if err != nil || index >= len(protected) {
			return ""
		}
		return protected[index]
	})
}

// replaceSpans wraps every match of the expression in the given tag. The expression has one capture group per
// delimiter variant and the first non-empty one is the content.
func replaceSpans(text string, regex *regexp.Regexp, tag string) string {
	return replaceMatches(text, regex, func(match []int) (string, bool) {
		var content string
		for g := 2; g+1 < len(match); g += 2 {
			if match[g] >= 0 {
				content = text[match[g]:match[g+1]]
				break
			}
		}
		if !balanced(content) {
			return "", false
		}
		if text[match[0]] == '_' && !(wordBoundary(text, match[0], true) && wordBoundary(text, match[1], false)) {
			return "", false
		}
		return "<" + tag + ">" + content + "</" + tag + ">", true
	})
}

func replaceLinks(text string) string {
	return replaceMatches(text, linkRegex, func(match []int) (string, bool) {
		var (
			label = text[match[2]:match[3]]
			href  = text[match[4]:match[5]]
		)
		if !linkSchemeRegex.MatchString(href) || !balanced(label) {
			return "", false
		}
		return `<a href="` + href + `" rel="noopener noreferrer" target="_blank">` + label + "</a>", true
	})
}

// replaceMatches rebuilds text with every match of the expression passed through fn. A match fn rejects is kept as
// it was.
func replaceMatches(text string, regex *regexp.Regexp, fn func(match []int) (string, bool)) string {
	matches := regex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var (
		b    strings.Builder
		last int
	)
	for _, match := range matches {
		replacement, ok := fn(match)
		if !ok {
			continue
		}
		b.WriteString(text[last:match[0]])
		b.WriteString(replacement)
		last = match[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// wordBoundary reports whether the position sits next to a non-word character, looking backwards for an opening
// delimiter and forwards for a closing one.
func wordBoundary(text string, pos int, before bool) bool {
	var r rune
	if before {
		if pos == 0 {
			return true
		}
		r, _ = utf8.DecodeLastRuneInString(text[:pos])
	} else {
		if pos >= len(text) {
			return true
		}
		r, _ = utf8.DecodeRuneInString(text[pos:])
	}
	return !(unicode.IsLetter(r) || unicode.IsDigit(r))
}

// balanced reports whether the tags generated by earlier rules open and close in order inside the fragment. Escaped
// text holds no literal '<', so every tag found here was produced by a rule.
func balanced(fragment string) bool {
	var stack []string
	for _, tag := range tagRegex.FindAllStringSubmatch(fragment, -1) {
		closing, name := tag[1] == "/", tag[2]
		if !closing {
			stack = append(stack, name)
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1] != name {
			return false
		}
		stack = stack[:len(stack)-1]
	}
	return len(stack) == 0
}
