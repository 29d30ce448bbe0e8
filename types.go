package folio

import (
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/projects"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "profile"
	Keywords    []string
	JSONLD      string
}

// HomeView is everything the public page renders.
type HomeView struct {
	Meta      PageMeta
	Site      SiteConfig
	Page      content.Page
	Featured  int // index into Page.Projects
	CsrfToken string
}

// FeaturedShowcase returns the carousel's current project, or nil when
// there are none.
func (v HomeView) FeaturedShowcase() *content.Showcase {
	if v.Featured < 0 || v.Featured >= len(v.Page.Projects) {
		return nil
	}
	return &v.Page.Projects[v.Featured]
}

// PrevIndex and NextIndex are the carousel neighbours of Featured.
func (v HomeView) PrevIndex() int {
	n := len(v.Page.Projects)
	if n == 0 {
		return 0
	}
	return (v.Featured - 1 + n) % n
}

func (v HomeView) NextIndex() int {
	n := len(v.Page.Projects)
	if n == 0 {
		return 0
	}
	return (v.Featured + 1) % n
}

// DashboardView is the admin project list.
type DashboardView struct {
	Projects  []projects.Record
	Message   string // confirmation, e.g. "Project added"
	Warning   string // non-fatal persistence warning
	CsrfToken string
	Form      FormView // the empty "add project" form
}

// FormView is the add or edit project form.
type FormView struct {
	ID         string // empty when adding
	Draft      projects.Draft
	Violations projects.Violations
	CsrfToken  string
}

// Editing reports whether the form edits an existing record.
func (f FormView) Editing() bool { return f.ID != "" }

// TagsValue renders the draft's tags for a text input.
func (f FormView) TagsValue() string { return JoinTags(f.Draft.Tags) }
