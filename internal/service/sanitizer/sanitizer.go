// Package sanitizer strips executable content from markup fragments.
//
// It does not trust the producer of the markup: the fragment is parsed into a tree with golang.org/x/net/html and
// filtered element by element, so the result is safe whether the input came from the render pipeline, from another
// markdown engine or from anywhere else.
package sanitizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// denied matches the elements removed together with their content. Besides the elements that run code or submit
// data, it holds the raw text elements whose content the serializer writes back unescaped.
var denied = cascadia.MustCompile(strings.Join([]string{
	"script", "style", "iframe", "object", "embed", "form", "input", "button", "link", "meta",
	"base", "frame", "frameset", "noscript", "noembed", "noframes", "xmp", "plaintext", "template", "svg", "math",
}, ", "))

// urlAttributes are the attributes whose value is dereferenced as a URL.
var urlAttributes = map[string]struct{}{
	"href":       {},
	"src":        {},
	"action":     {},
	"formaction": {},
	"poster":     {},
	"background": {},
	"cite":       {},
}

var deniedSchemes = []string{"javascript:", "vbscript:", "data:"}

// renderNode serializes one node of the filtered tree.
var renderNode = html.Render

// Sanitize returns the fragment without denied elements, event handler attributes, comments and script-bearing URLs.
// Benign markup is kept as it is. It never fails: a fragment that can't be parsed or serialized yields an empty
// string. Sanitize is idempotent.
func Sanitize(fragment string) (result string) {
	defer func() {
		if recover() != nil {
			result = ""
		}
	}()

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return ""
	}
	for _, node := range nodes {
		body.AppendChild(node)
	}

	doc := goquery.NewDocumentFromNode(body)
	doc.FindMatcher(denied).Remove()
	removeComments(body)
	doc.Find("*").Each(func(_ int, selection *goquery.Selection) {
		for _, node := range selection.Nodes {
			node.Attr = filterAttributes(node.Attr)
		}
	})

	var b strings.Builder
	for node := body.FirstChild; node != nil; node = node.NextSibling {
		if err := renderNode(&b, node); err != nil {
			return ""
		}
	}
	return b.String()
}

func filterAttributes(attrs []html.Attribute) []html.Attribute {
	result := attrs[:0]
	for _, attr := range attrs {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if _, ok := urlAttributes[key]; ok && unsafeURL(attr.Val) {
			continue
		}
		result = append(result, attr)
	}
	return result
}

// unsafeURL reports whether the URL uses a scheme that can run code. The parser already decoded character references,
// and whitespace or control characters are dropped before comparing because browsers ignore them inside a scheme.
func unsafeURL(value string) bool {
	value = strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, value)
	value = strings.ToLower(value)

	for _, scheme := range deniedSchemes {
		if strings.HasPrefix(value, scheme) {
			return true
		}
	}
	return false
}

func removeComments(node *html.Node) {
	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			node.RemoveChild(child)
		} else {
			removeComments(child)
		}
		child = next
	}
}
