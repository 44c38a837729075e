package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"sharebox-go/internal/countdown"
	"sharebox-go/internal/selection"
	"sharebox-go/internal/session"
)

type Tab string

const (
	TabSend    Tab = "send"
	TabReceive Tab = "receive"
)

// ParseTab falls back to the send tab for anything unknown.
func ParseTab(s string) Tab {
	if Tab(s) == TabReceive {
		return TabReceive
	}
	return TabSend
}

type SharePageData struct {
	Tab     Tab
	Send    session.SendView
	Receive session.ReceiveView
}

// SharePage is the combined send and receive page.
func SharePage(d SharePageData) templ.Component {
	return Layout("ShareIt", component(func(h *html) {
		h.raw(`<nav class="tabs">`)
		for _, t := range []Tab{TabSend, TabReceive} {
			h.raw("<a")
			h.url("href", templ.URL("/?tab="+string(t)))
			if t == d.Tab {
				h.raw(` class="active"`)
			}
			h.raw(">")
			if t == TabSend {
				h.text("Send")
			} else {
				h.text("Receive")
			}
			h.raw("</a>")
		}
		h.raw("</nav>")

		if d.Tab == TabReceive {
			h.render(ViewerPage(ViewerData{Receive: d.Receive}))
			return
		}
		h.render(sendPanel(d.Send))
	}))
}

func sendPanel(v session.SendView) templ.Component {
	return component(func(h *html) {
		h.raw(`<section class="card">`)
		renderErrors(h, v.Errors)

		if v.Result != nil {
			h.render(resultPanel(v))
			h.raw("</section>")
			return
		}

		h.raw(`<div class="modes">`)
		for _, m := range []session.Mode{session.ModeFiles, session.ModeText} {
			class := "btn"
			if m == v.Mode {
				class += " active"
			}
			label := "Files"
			if m == session.ModeText {
				label = "Text"
			}
			h.raw(`<form method="post" action="/send/mode" class="inline">`)
			h.raw(`<input type="hidden" name="mode"`)
			h.attr("value", string(m))
			h.raw(`><button type="submit"`)
			h.attr("class", class)
			h.raw(">")
			h.text(label)
			h.raw("</button></form>")
		}
		h.raw("</div>")

		if v.Mode == session.ModeText {
			h.raw(`<form method="post" action="/send/text" class="stack">`)
			h.raw(`<textarea name="text" rows="10" placeholder="Paste or type the text to share">`)
			h.text(v.Text)
			h.raw(`</textarea><button type="submit" class="btn primary"`)
			if v.Uploading {
				h.raw(" disabled")
			}
			h.raw(">Share Text</button></form>")
			h.raw("</section>")
			return
		}

		h.raw(`<form method="post" action="/send/files" enctype="multipart/form-data" class="dropzone">`)
		h.raw(`<input type="file" name="files" multiple`)
		h.attr("accept", strings.Join(v.Limits.AllowedTypes, ","))
		h.raw(`><button type="submit" class="btn">Add files</button>`)
		h.raw(`<p class="hint">`)
		h.text(fmt.Sprintf("Up to %d files, %s each, %s in total",
			v.Limits.MaxFiles,
			selection.FormatSize(v.Limits.MaxFileSize),
			selection.FormatSize(v.Limits.MaxTotalSize)))
		h.raw("</p></form>")

		if len(v.Files) > 0 {
			h.raw(`<ul class="files">`)
			for i, f := range v.Files {
				h.raw("<li><span>")
				h.text(f.Name)
				h.raw(`</span><span class="size">`)
				h.text(selection.FormatSize(f.Size))
				h.raw("</span>")
				h.postButton("/send/remove/"+strconv.Itoa(i), "Remove", "btn small")
				h.raw("</li>")
			}
			h.raw("</ul><p class=\"hint\">")
			h.text(fmt.Sprintf("%d files, %s", len(v.Files), selection.FormatSize(v.TotalBytes)))
			h.raw("</p>")
		}

		h.raw(`<form method="post" action="/send/upload"><button type="submit" class="btn primary"`)
		if v.Uploading || len(v.Files) == 0 {
			h.raw(" disabled")
		}
		h.raw(">")
		if v.Uploading {
			h.text("Uploading...")
		} else {
			h.text("Upload")
		}
		h.raw("</button></form></section>")
	})
}

func resultPanel(v session.SendView) templ.Component {
	return component(func(h *html) {
		r := v.Result
		h.raw(`<div class="result"><h2>Ready to share</h2>`)

		h.raw(`<label>Link</label><div class="row"><input readonly`)
		h.attr("value", r.Link)
		h.raw(">")
		copyButton(h, "/send/copy/"+session.CopyLink, r.Link, "Copy", v.LinkCopied, 5000)
		h.raw("</div>")

		h.raw(`<label>Access code</label><div class="row"><div class="digits">`)
		for _, d := range r.AccessCode {
			h.raw(`<span class="digit">`)
			h.text(string(d))
			h.raw("</span>")
		}
		h.raw("</div>")
		copyButton(h, "/send/copy/"+session.CopyCode, r.AccessCode, "Copy Code", v.CodeCopied, 5000)
		h.raw("</div>")

		h.raw(`<p class="expiry">Expires in <span data-countdown`)
		h.attr("data-remaining", strconv.FormatInt(int64(v.Remaining.Seconds()), 10))
		h.raw(">")
		h.text(countdown.Format(v.Remaining))
		h.raw("</span></p>")

		h.postButton("/send/reset", "Upload More", "btn")
		h.raw("</div>")
	})
}

// copyButton posts to action after the script has put value on the
// clipboard. While copied is set the label reads "Copied!".
func copyButton(h *html, action, value, label string, copied bool, resetMs int) {
	shown := label
	if copied {
		shown = "Copied!"
	}
	h.postButton(action, shown, "btn small",
		"data-copy", value,
		"data-label", label,
		"data-reset-ms", strconv.Itoa(resetMs))
}

func renderErrors(h *html, errs []string) {
	if len(errs) == 0 {
		return
	}
	h.raw(`<div class="errors" role="alert"><ul>`)
	for _, e := range errs {
		h.raw("<li>")
		h.text(e)
		h.raw("</li>")
	}
	h.raw("</ul></div>")
}
