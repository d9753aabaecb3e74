// Package web — шаблоны и статика, встроенные в бинарник.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates assets
var content embed.FS

// Templates — корень templates/ (layouts, partials, pages).
func Templates() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Assets — корень assets/ для http.FileServer.
func Assets() fs.FS {
	sub, err := fs.Sub(content, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
