package content

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/gateway"
)

// Source is the part of the remote gateway the loader reads from.
type Source interface {
	ListDocuments(ctx context.Context, collection string) ([]gateway.Document, error)
	FileViewURL(ctx context.Context, fileID string) (string, error)
}

// Collections names the remote collections and the profile image file.
// An empty name skips that section.
type Collections struct {
	Frontend      string
	Backend       string
	Soft          string
	Projects      string
	ProfileFileID string
}

// Section names reported in Page.Degraded.
const (
	SectionProfile  = "profile"
	SectionFrontend = "frontend"
	SectionBackend  = "backend"
	SectionSoft     = "soft"
	SectionProjects = "projects"
)

// Loader builds a Page from a Source, falling back to Defaults per section.
type Loader struct {
	source      Source
	collections Collections
	timeout     time.Duration
	logger      *slog.Logger
}

// NewLoader returns a Loader. A zero timeout means 8 seconds.
func NewLoader(source Source, collections Collections, timeout time.Duration, logger *slog.Logger) *Loader {
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, collections: collections, timeout: timeout, logger: logger}
}

// Load reads all sections in parallel. It never fails: every section that
// cannot be read, or comes back empty, keeps its bundled default.
func (l *Loader) Load(ctx context.Context) Page {
	page := Defaults()
	if l.source == nil {
		return page
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		degraded []string
		g        errgroup.Group
	)
	fail := func(section string, err error) {
		l.logger.Warn("content fallback", "section", section, "error", err)
		mu.Lock()
		degraded = append(degraded, section)
		mu.Unlock()
	}

	if id := l.collections.ProfileFileID; id != "" {
		g.Go(func() error {
			u, err := l.source.FileViewURL(ctx, id)
			if err != nil {
				fail(SectionProfile, err)
				return nil
			}
			page.ProfileImage = u
			return nil
		})
	}
	if c := l.collections.Frontend; c != "" {
		g.Go(func() error {
			docs, err := l.source.ListDocuments(ctx, c)
			if err != nil {
				fail(SectionFrontend, err)
			} else if len(docs) > 0 {
				page.Frontend = mapSkills(docs)
			}
			return nil
		})
	}
	if c := l.collections.Backend; c != "" {
		g.Go(func() error {
			docs, err := l.source.ListDocuments(ctx, c)
			if err != nil {
				fail(SectionBackend, err)
			} else if len(docs) > 0 {
				page.Backend = mapSkills(docs)
			}
			return nil
		})
	}
	if c := l.collections.Soft; c != "" {
		g.Go(func() error {
			docs, err := l.source.ListDocuments(ctx, c)
			if err != nil {
				fail(SectionSoft, err)
			} else if len(docs) > 0 {
				page.Soft = mapSoftSkills(docs)
			}
			return nil
		})
	}
	if c := l.collections.Projects; c != "" {
		g.Go(func() error {
			docs, err := l.source.ListDocuments(ctx, c)
			if err != nil {
				fail(SectionProjects, err)
			} else if len(docs) > 0 {
				page.Projects = mapShowcase(docs)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(degraded)
	page.Degraded = degraded
	return page
}

func mapSkills(docs []gateway.Document) []Skill {
	out := make([]Skill, 0, len(docs))
	for _, d := range docs {
		level := intField(d["proficiency"])
		if level == 0 {
			level = intField(d["level"])
		}
		out = append(out, Skill{Name: d.String("skillName"), Level: level})
	}
	return out
}

func mapSoftSkills(docs []gateway.Document) []SoftSkill {
	out := make([]SoftSkill, 0, len(docs))
	for _, d := range docs {
		icon := d.String("icon")
		if icon == "" {
			icon = "✨"
		}
		out = append(out, SoftSkill{
			Name:        d.String("name"),
			Icon:        icon,
			Description: d.String("description"),
			Keywords:    listField(d["keywords"]),
		})
	}
	return out
}

func mapShowcase(docs []gateway.Document) []Showcase {
	out := make([]Showcase, 0, len(docs))
	for _, d := range docs {
		link := d.String("link")
		if link == "" {
			link = d.String("liveLink")
		}
		if link == "" {
			link = d.String("githubLink")
		}
		out = append(out, Showcase{
			Title:       d.String("title"),
			Description: d.String("description"),
			Tags:        listField(d["tags"]),
			Image:       d.String("image"),
			Link:        link,
		})
	}
	return out
}

// intField reads a number that may arrive as a JSON number or a string.
// Strings are read like parseInt: leading digits only.
func intField(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		s := strings.TrimSpace(n)
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		i, _ := strconv.Atoi(s[:end])
		return i
	}
	return 0
}

// listField accepts either a JSON array of strings or a comma separated string.
func listField(v any) []string {
	var out []string
	switch l := v.(type) {
	case []any:
		for _, item := range l {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(l, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
