package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/ooxml-tools/ooxml-validator/pkg/parser"
)

// Placeholder is rendered wherever a value is absent
const Placeholder = "undefined"

// Title of every report page
const Title = "OOXML Validation Errors"

//go:embed templates/*.html
var templateFS embed.FS

var pages = loadPages("loading.html", "success.html", "errors.html")

// Options carries the context shown alongside the validation result
type Options struct {
	// FormatVersion is the Office version label the file was validated against
	FormatVersion string

	// FileName is the validated file
	FileName string

	// ExportPath is where the error log was written, empty if none was
	ExportPath string
}

type errorView struct {
	ID                    string
	Description           string
	XPath                 string
	PartURI               string
	NamespacesDefinitions []string
	HasNamespaces         bool
}

type pageData struct {
	Title         string
	Heading       string
	FileName      string
	FormatVersion string
	ExportPath    string
	Placeholder   string
	Errors        []errorView
}

// loadPages parses every page together with the shared layout
func loadPages(names ...string) map[string]*template.Template {
	tmplFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	layout, err := fs.ReadFile(tmplFS, "layout.html")
	if err != nil {
		panic(err)
	}

	loaded := make(map[string]*template.Template, len(names))
	for _, name := range names {
		page, err := fs.ReadFile(tmplFS, name)
		if err != nil {
			panic(err)
		}
		tmpl := template.Must(template.New(name).Parse(string(layout)))
		template.Must(tmpl.Parse(string(page)))
		loaded[name] = tmpl
	}
	return loaded
}

// Render returns the report page for errs. A nil slice means the result
// isn't known yet and yields the loading page; an empty slice yields the
// success page; otherwise every error is listed.
func Render(errs []parser.ValidationError, opts Options) (string, error) {
	if errs == nil {
		return execute("loading.html", pageData{Title: Title})
	}

	data := pageData{
		Title:         Title,
		FileName:      orPlaceholder(opts.FileName),
		FormatVersion: orPlaceholder(opts.FormatVersion),
		ExportPath:    opts.ExportPath,
		Placeholder:   Placeholder,
	}

	if len(errs) == 0 {
		return execute("success.html", data)
	}

	data.Heading = Summary(errs)
	data.Errors = make([]errorView, 0, len(errs))
	for _, ve := range errs {
		data.Errors = append(data.Errors, errorView{
			ID:                    deref(ve.ID),
			Description:           deref(ve.Description),
			XPath:                 deref(ve.XPath),
			PartURI:               deref(ve.PartURI),
			NamespacesDefinitions: ve.NamespacesDefinitions,
			HasNamespaces:         ve.NamespacesDefinitions != nil,
		})
	}
	return execute("errors.html", data)
}

// RenderLoading returns the page shown while validation is in progress
func RenderLoading() string {
	html, err := Render(nil, Options{})
	if err != nil {
		// The loading page has no inputs; failing here means the embedded template is broken
		panic(err)
	}
	return html
}

// Summary is the plain text headline for errs
func Summary(errs []parser.ValidationError) string {
	switch len(errs) {
	case 0:
		return "No Errors Found!!"
	case 1:
		return "There was 1 Validation Error Found"
	default:
		return fmt.Sprintf("There were %d Validation Errors Found", len(errs))
	}
}

func execute(page string, data pageData) (string, error) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", page, err)
	}
	return buf.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
