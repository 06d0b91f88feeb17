package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownInit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message   string
		parser    Markdown
		engine    string
		policy    string
		shouldErr bool
	}{
		{
			message: "fill the defaults",
			parser:  Markdown{},
			engine:  EngineBuiltin,
			policy:  PolicyDenylist,
		},
		{
			message: "accept the blackfriday engine and the ugc policy",
			parser:  Markdown{Engine: EngineBlackfriday, Policy: PolicyUGC},
			engine:  EngineBlackfriday,
			policy:  PolicyUGC,
		},
		{
			message:   "have an error because of an unknown engine",
			parser:    Markdown{Engine: "commonmark"},
			shouldErr: true,
		},
		{
			message:   "have an error because of an unknown policy",
			parser:    Markdown{Policy: "none"},
			shouldErr: true,
		},
	}

	for i := 0; i < len(tests); i++ {
		tt := tests[i]
		t.Run("Should "+tt.message, func(t *testing.T) {
			t.Parallel()

			err := tt.parser.Init()
			require.Equal(t, tt.shouldErr, (err != nil))
			if err != nil {
				return
			}
			require.Equal(t, tt.engine, tt.parser.Engine)
			require.Equal(t, tt.policy, tt.parser.Policy)
		})
	}
}

func TestMarkdownDo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message     string
		parser      Markdown
		payload     string
		expected    string
		contains    []string
		notContains []string
	}{
		{
			message:  "render with the builtin engine",
			parser:   Markdown{},
			payload:  "**x**",
			expected: "<p><strong>x</strong></p>",
		},
		{
			message:  "render heading anchors with the builtin engine",
			parser:   Markdown{Anchors: true},
			payload:  "# Hello, World!",
			expected: `<h1 id="hello-world">Hello, World!</h1>`,
		},
		{
			message:  "render with the blackfriday engine",
			parser:   Markdown{Engine: EngineBlackfriday},
			payload:  "**x**\n",
			contains: []string{"<p><strong>x</strong></p>"},
		},
		{
			message:     "sanitize the raw markup passed through by blackfriday",
			parser:      Markdown{Engine: EngineBlackfriday},
			payload:     "<script>alert(1)</script>\n\n<p onclick=\"alert(1)\">a</p>\n\nlink <a href=\"javascript:alert(1)\">y</a>\n",
			contains:    []string{"<p>a</p>"},
			notContains: []string{"<script", "onclick", "javascript:"},
		},
		{
			message:  "render heading anchors with the blackfriday engine",
			parser:   Markdown{Engine: EngineBlackfriday, Anchors: true},
			payload:  "# Hello World\n",
			contains: []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			message:  "layer the ugc policy over the builtin engine",
			parser:   Markdown{Policy: PolicyUGC},
			payload:  "[x](https://a.com)\n```go\ny\n```\n==z==",
			contains: []string{`href="https://a.com"`, "noopener noreferrer", "nofollow", `class="language-go"`, "<mark>z</mark>"},
		},
	}

	for i := 0; i < len(tests); i++ {
		tt := tests[i]
		t.Run("Should "+tt.message, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, tt.parser.Init())
			output := string(tt.parser.Do([]byte(tt.payload)))
			if tt.expected != "" {
				require.Equal(t, tt.expected, output)
			}
			for _, fragment := range tt.contains {
				require.Contains(t, output, fragment)
			}
			for _, fragment := range tt.notContains {
				require.NotContains(t, output, fragment)
			}
		})
	}
}

func TestMarkdownSanitizedAnchorName(t *testing.T) {
	t.Parallel()

	var m Markdown
	require.Equal(t, "hello-world", m.SanitizedAnchorName("Hello, World!"))
}
