package views

import (
	"embed"

	"github.com/a-h/templ"
)

//go:embed assets
var Assets embed.FS

func Layout(title string, body templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/assets/app.css">`)
		h.raw(`<script src="/assets/app.js" defer></script></head><body><main class="container">`)
		h.raw(`<header><a href="/" class="brand">ShareIt</a></header>`)
		h.render(body)
		h.raw("</main></body></html>")
	})
}

func NotFound() templ.Component {
	return Layout("Not found", component(func(h *html) {
		h.raw(`<section class="card center"><h1>404</h1><p>This page does not exist.</p>`)
		h.raw(`<a href="/" class="btn">Back to ShareIt</a></section>`)
	}))
}
