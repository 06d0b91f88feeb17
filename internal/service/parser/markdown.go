package parser

import (
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
	"github.com/shurcooL/sanitized_anchor_name"

	"nitro/markdown-render/internal/service/render"
	"nitro/markdown-render/internal/service/sanitizer"
)

// Engines.
const (
	EngineBuiltin     = "builtin"
	EngineBlackfriday = "blackfriday"
)

// Policies.
const (
	PolicyDenylist = "denylist"
	PolicyUGC      = "ugc"
)

// Markdown expose a parser that transform Markdown into safe HTML.
type Markdown struct {
	Engine  string
	Policy  string
	Anchors bool

	renderer render.Renderer
	policy   *bluemonday.Policy
}

// Init the internal state.
func (m *Markdown) Init() error {
	switch m.Engine {
	case "":
		m.Engine = EngineBuiltin
	case EngineBuiltin, EngineBlackfriday:
	default:
		return fmt.Errorf("invalid engine '%s'", m.Engine)
	}

	switch m.Policy {
	case "":
		m.Policy = PolicyDenylist
	case PolicyDenylist:
	case PolicyUGC:
		m.policy = ugcPolicy()
	default:
		return fmt.Errorf("invalid policy '%s'", m.Policy)
	}

	if m.Anchors {
		m.renderer.HeadingID = m.SanitizedAnchorName
	}
	return nil
}

// Do transform the Markdown into HTML.
func (m Markdown) Do(payload []byte) []byte {
	var fragment string
	switch m.Engine {
	case EngineBlackfriday:
		extensions := blackfriday.CommonExtensions
		if m.Anchors {
			extensions |= blackfriday.AutoHeadingIDs
		}
		fragment = sanitizer.Sanitize(string(blackfriday.Run(payload, blackfriday.WithExtensions(extensions))))
	default:
		fragment = m.renderer.Render(string(payload))
	}

	if m.policy != nil {
		fragment = m.policy.Sanitize(fragment)
	}
	return []byte(fragment)
}

// SanitizedAnchorName process the anchor.
func (m Markdown) SanitizedAnchorName(text string) string {
	return sanitized_anchor_name.Create(text)
}

// ugcPolicy is bluemonday's policy for user generated content, extended with the attributes the builtin engine
// produces.
func ugcPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("mark")
	p.AllowAttrs("rel", "target").OnElements("a")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")
	return p
}
