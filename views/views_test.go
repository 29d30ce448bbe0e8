package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/projects"
)

func renderString(t *testing.T, fn func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(&buf))
	return buf.String()
}

func TestHomeRendersFeaturedProject(t *testing.T) {
	page := content.Defaults()
	v := folio.HomeView{
		Meta:     folio.PageMeta{Title: "Folio", JSONLD: `{"@type":"ProfilePage"}`},
		Site:     folio.SiteConfig{Name: "Folio", Author: "Sam"},
		Page:     page,
		Featured: 1,
	}
	out := renderString(t, func(b *bytes.Buffer) error {
		return Home(v).Render(context.Background(), b)
	})
	assert.Contains(t, out, page.Projects[1].Title)
	assert.Contains(t, out, `{"@type":"ProfilePage"}`)
	assert.Contains(t, out, `/?project=0#projects`)
	assert.Contains(t, out, page.Frontend[0].Name)
}

func TestAdminFormShowsViolations(t *testing.T) {
	v := folio.FormView{
		ID:    "abc",
		Draft: projects.Draft{Title: "<b>x</b>", Tags: []string{"Go", "SQL"}},
		Violations: projects.Violations{
			projects.FieldGithubLink: "GitHub link is required",
		},
	}
	out := renderString(t, func(b *bytes.Buffer) error {
		return AdminForm(v).Render(context.Background(), b)
	})
	assert.Contains(t, out, "GitHub link is required")
	assert.Contains(t, out, "/admin/projects/abc/")
	assert.Contains(t, out, "Go, SQL")
	assert.NotContains(t, out, "<b>x</b>", "user input is escaped")
}

func TestDashboardListsProjects(t *testing.T) {
	v := folio.DashboardView{
		Projects: []projects.Record{{ID: "p1", Title: "Alpha", Status: "Live"}},
		Warning:  "may not survive",
	}
	out := renderString(t, func(b *bytes.Buffer) error {
		return AdminDashboard(v).Render(context.Background(), b)
	})
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, `hx-delete="/admin/projects/p1/"`)
	assert.Contains(t, out, "may not survive")
	assert.Contains(t, out, "Add project")
}

func TestStaticPages(t *testing.T) {
	out := renderString(t, func(b *bytes.Buffer) error {
		return NotFound().Render(context.Background(), b)
	})
	assert.Contains(t, out, "404")

	out = renderString(t, func(b *bytes.Buffer) error {
		return ContactResult(false, "nope").Render(context.Background(), b)
	})
	assert.Contains(t, out, "failure")
	assert.Contains(t, out, "nope")
}
