// Package markdown renders trusted-looking but untrusted markdown to safe HTML.
package markdown

import (
	"html/template"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "table")
		p.RequireNoFollowOnLinks(true)
		policy = p
	})
	return policy
}

// ToHTML converts markdown to sanitized HTML.
func ToHTML(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	// Parsers keep state and cannot be reused.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	out := markdown.ToHTML([]byte(src), p, renderer)
	return strings.TrimSpace(sanitizer().Sanitize(string(out)))
}

// Render is ToHTML typed for html/template.
func Render(src string) template.HTML {
	return template.HTML(ToHTML(src))
}
