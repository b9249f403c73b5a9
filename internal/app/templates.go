package app

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// templateFS contains the HTML templates bundled with the binary.
//
//go:embed templates/*.gohtml templates/pages/*.gohtml
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// parseTemplates returns one template set per page, each holding the shared
// layout and partials plus that page's "content" block.
func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("layout.gohtml").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}

	pages, err := fs.Glob(templateFS, "templates/pages/*.gohtml")
	if err != nil {
		return nil, err
	}

	set := make(map[string]*template.Template, len(pages))
	for _, file := range pages {
		name := strings.TrimSuffix(path.Base(file), ".gohtml")
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		set[name] = clone
	}
	return set, nil
}

// staticHandler serves the embedded stylesheet and images under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
