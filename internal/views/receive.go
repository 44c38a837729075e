package views

import (
	"strconv"

	"github.com/a-h/templ"

	"sharebox-go/internal/classifier"
	"sharebox-go/internal/session"
	"sharebox-go/internal/share"
)

// ViewerData parametrizes the receive view. On the combined page actions are
// posted to /receive/...; on a standalone link page (Hash set) they are plain
// links back to the same page.
type ViewerData struct {
	Receive session.ReceiveView
	Hash    string
}

func (d ViewerData) standalone() bool {
	return d.Hash != ""
}

// ViewerPage renders the code form or the redeemed content.
func ViewerPage(d ViewerData) templ.Component {
	return component(func(h *html) {
		v := d.Receive
		h.raw(`<section class="card">`)

		if !v.Authenticated {
			if v.ErrorMsg != "" {
				renderErrors(h, []string{v.ErrorMsg})
			}
			if d.standalone() {
				h.raw(`<a href="/" class="btn">Go to ShareIt</a>`)
			} else {
				codeForm(h, v)
			}
			h.raw("</section>")
			return
		}

		switch {
		case v.Content.Kind == share.KindText:
			textContent(h, v)
		case v.Mode == session.ViewViewer && v.Selected != nil:
			mediaViewer(h, d, *v.Selected)
		default:
			fileList(h, d)
		}

		if !d.standalone() {
			h.postButton("/receive/reset", "Access other content", "btn")
		}
		h.raw("</section>")
	})
}

func codeForm(h *html, v session.ReceiveView) {
	h.raw(`<form method="post" action="/receive" class="stack" data-otp>`)
	h.raw(`<label>Enter the 6-digit access code</label><div class="digits">`)
	for i, d := range v.Digits {
		h.raw(`<input class="digit" inputmode="numeric" maxlength="1" autocomplete="one-time-code"`)
		h.attr("name", "d"+strconv.Itoa(i))
		h.attr("value", d)
		h.raw(">")
	}
	h.raw(`</div><button type="submit" class="btn primary">Access Content</button></form>`)
}

func textContent(h *html, v session.ReceiveView) {
	h.raw(`<h2>Shared text</h2><pre class="text">`)
	h.text(v.Content.Text)
	h.raw("</pre>")
	copyButton(h, "/receive/copy/"+session.CopyText, v.Content.Text, "Copy Text", v.TextCopied, 2000)
}

func fileList(h *html, d ViewerData) {
	files := d.Receive.Content.Files
	h.raw("<h2>Shared files</h2>")
	if len(files) == 0 {
		h.raw(`<p class="hint">No files in this share.</p>`)
		return
	}

	h.raw(`<ul class="files">`)
	for i, f := range files {
		c := classifier.Classify(f.Name)
		h.raw("<li")
		h.attr("data-category", c.Category.String())
		h.raw("><span>")
		h.text(f.Name)
		h.raw("</span>")
		if c.Category.Previewable() {
			if d.standalone() {
				h.raw(`<a class="btn small"`)
				h.url("href", templ.URL("/"+d.Hash+"?file="+strconv.Itoa(i)))
				h.raw(">")
				h.text(c.Category.Action())
				h.raw("</a>")
			} else {
				h.postButton("/receive/select/"+strconv.Itoa(i), c.Category.Action(), "btn small")
			}
		}
		h.raw(`<a class="btn small" download target="_blank" rel="noopener"`)
		h.url("href", templ.URL(f.URL))
		h.raw(">Download</a></li>")
	}
	h.raw("</ul>")
}

func mediaViewer(h *html, d ViewerData, f session.SelectedFile) {
	h.raw(`<div class="viewer"><div class="viewer-bar"><span>`)
	h.text(f.Name)
	h.raw("</span>")
	if d.standalone() {
		h.raw(`<a class="btn small"`)
		h.url("href", templ.URL("/"+d.Hash))
		h.raw(">Back</a>")
	} else {
		h.postButton("/receive/back", "Back", "btn small")
	}
	h.raw("</div>")

	src := templ.URL(f.URL)
	switch f.Category {
	case classifier.Image:
		h.raw("<img")
		h.url("src", src)
		h.attr("alt", f.Name)
		h.raw(">")
	case classifier.Video:
		h.raw("<video controls autoplay")
		h.url("src", src)
		h.raw("></video>")
	case classifier.Audio:
		h.raw("<audio controls autoplay")
		h.url("src", src)
		h.raw("></audio>")
	}

	h.raw(`<a class="btn" download target="_blank" rel="noopener"`)
	h.url("href", src)
	h.raw(">Download</a></div>")
}

// LinkPage is the standalone page behind a share link.
func LinkPage(hash string, v session.ReceiveView) templ.Component {
	return Layout("Shared content", ViewerPage(ViewerData{Receive: v, Hash: hash}))
}
