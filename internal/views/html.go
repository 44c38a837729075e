// Package views renders the web front. Components are templ components
// written directly against templ.ComponentFunc.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// html accumulates writes and keeps the first error.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *html) url(name string, u templ.SafeURL) {
	h.attr(name, string(u))
}

func (h *html) render(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// postButton renders a one-button form posting to action.
func (h *html) postButton(action, label, class string, extra ...string) {
	h.raw(`<form method="post"`)
	h.url("action", templ.URL(action))
	h.raw(` class="inline">`)
	h.raw(`<button type="submit"`)
	h.attr("class", class)
	for i := 0; i+1 < len(extra); i += 2 {
		h.attr(extra[i], extra[i+1])
	}
	h.raw(">")
	h.text(label)
	h.raw("</button></form>")
}
