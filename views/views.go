// Package views holds folio's default page templates. Each view is exposed
// as a templ.Component so a site can swap any of them for generated templ
// code without touching handlers.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"meta": func(title string) folio.PageMeta {
		return folio.PageMeta{Title: title}
	},
	"dict": func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, _ := kv[i].(string)
			m[k] = kv[i+1]
		}
		return m
	},
	// JSON-LD is produced by folio from marshalled config.
	"jsonld":     func(s string) template.JS { return template.JS(s) },
	"join":       func(tags []string) string { return strings.Join(tags, ", ") },
	"pathEscape": folio.PathEscape,
}).ParseFS(templateFS, "templates/*.html"))

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// Default returns the built-in views.
func Default() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:           Home,
		ContactResult:  ContactResult,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminForm:      AdminForm,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

func Home(v folio.HomeView) templ.Component {
	return component("home", v)
}

func ContactResult(ok bool, message string) templ.Component {
	return component("contact_result", struct {
		OK      bool
		Message string
	}{ok, message})
}

func AdminLogin(showError bool, csrfToken string) templ.Component {
	return component("admin_login", struct {
		ShowError bool
		CsrfToken string
	}{showError, csrfToken})
}

func AdminDashboard(v folio.DashboardView) templ.Component {
	return component("admin_dashboard", v)
}

// AdminForm renders the full add/edit page. Field violations are shown
// next to their inputs.
func AdminForm(v folio.FormView) templ.Component {
	return component("admin_form", v)
}

func NotFound() templ.Component {
	return component("not_found", nil)
}

func ServerError() templ.Component {
	return component("server_error", nil)
}
