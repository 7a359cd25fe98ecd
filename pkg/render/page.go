package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Default PyScript assets. The py-env and py-repl elements used by the page
// belong to this release line.
const (
	DefaultPyScriptJS  = "https://pyscript.net/alpha/pyscript.js"
	DefaultPyScriptCSS = "https://pyscript.net/alpha/pyscript.css"
)

// PageData is the input to [WritePage].
type PageData struct {
	Title    string
	RunID    string
	Language string
	Cells    []Cell

	// Env is the environment manifest in py-env form, one "- name" per line.
	Env string

	PyScriptJS  string
	PyScriptCSS string
}

//go:embed page.html.tmpl
var pageSource string

var bodyPolicy = bluemonday.UGCPolicy()

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	// Bodies are sanitized again before being marked safe.
	"trusted": func(body string) template.HTML {
		return template.HTML(bodyPolicy.Sanitize(body))
	},
	"rows": func(src string) int {
		return max(1, strings.Count(src, "\n")+1)
	},
}).Parse(pageSource))

// WritePage writes a standalone HTML document hosting the rendered cells.
// Code cells become py-repl elements holding their unexecuted source, and
// the manifest is emitted once as the page's py-env element.
func WritePage(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Notebook"
	}
	if data.PyScriptJS == "" {
		data.PyScriptJS = DefaultPyScriptJS
	}
	if data.PyScriptCSS == "" {
		data.PyScriptCSS = DefaultPyScriptCSS
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
