// Package render turns user-written text into safe output.
//
// Post bodies are Markdown. They are converted to HTML with goldmark and
// then passed through bluemonday's UGC policy, so a post can contain
// tables, code blocks and links but never a <script> or an onclick.
// Titles, tags and comments are plain text: StrictPolicy strips every tag.
package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldhtml.WithHardWraps(),
			goldhtml.WithXHTML(),
		),
	)

	ugc    = newUGCPolicy()
	strict = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// Markdown renders src to sanitized HTML. If goldmark fails the escaped
// source is returned, never the raw input.
func Markdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return html.EscapeString(src)
	}
	return string(ugc.SanitizeBytes(buf.Bytes()))
}

// PlainText strips all markup from s and trims surrounding space.
//
// Entities are decoded BEFORE sanitizing, so "&lt;script&gt;" is stripped
// like "<script>" rather than coming back as a live tag. StrictPolicy
// escapes what it keeps (a & b -> a &amp; b); the text is stored and later
// JSON-encoded, not written into HTML, so those entities are decoded again.
// The pass repeats until the text no longer changes, which catches
// double-encoded markup. Text that never settles is returned escaped.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxPlainTextPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(html.UnescapeString(s))))
		if next == s {
			return s
		}
		s = next
	}
	return strings.TrimSpace(strict.Sanitize(s))
}

const maxPlainTextPasses = 4
