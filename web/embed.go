package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// Page is the data the board page template renders.
type Page struct {
	Title        string
	DefaultSize  int
	MinSize      int
	MaxSize      int
	Difficulty   string
	Difficulties []string
}

// StaticFS returns a file system for serving /static assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses and returns the embedded templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(Assets, "templates/*.tmpl"))
}

// RenderIndex writes the board page.
func RenderIndex(w io.Writer, tmpl *template.Template, p Page) error {
	return tmpl.ExecuteTemplate(w, "index.tmpl", p)
}
