package backend

import (
	"html/template"

	"gitlab.com/golang-commonmark/markdown"
)

var commonMark = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// RenderMarkdown translates CommonMark markdown to HTML. Raw HTML in the
// input is escaped, not passed through.
func RenderMarkdown(input string) template.HTML {
	return template.HTML(commonMark.RenderToString([]byte(input)))
}
