// Package views renders the portfolio's pages and htmx fragments. Templates
// are html/template files embedded in the binary and exposed as templ
// components, so handlers render them the same way as compiled templ code.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/reannemartin/folio/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"safeURL": markdown.SafeURL,
}

var templates = template.Must(template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

type errorPage struct {
	Title   string
	Heading string
	Message string
}

// Home is the full single-page portfolio.
func Home(p HomePage) templ.Component {
	return templ.FromGoHTML(templates.Lookup("home"), p)
}

// Overlay is the fragment swapped into #overlay after every interaction: the
// project detail (if any) plus the contact modal as an out-of-band swap.
func Overlay(i Interaction) templ.Component {
	return templ.FromGoHTML(templates.Lookup("interaction"), i)
}

func NotFound() templ.Component {
	return templ.FromGoHTML(templates.Lookup("error"), errorPage{
		Title:   "Not found",
		Heading: "404",
		Message: "That page does not exist.",
	})
}

func ServerError() templ.Component {
	return templ.FromGoHTML(templates.Lookup("error"), errorPage{
		Title:   "Something went wrong",
		Heading: "500",
		Message: "Something went wrong on our side. Please try again.",
	})
}
