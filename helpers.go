package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/folio/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// PersonJsonLD returns a JSON-LD string for a ProfilePage about the site's author.
func PersonJsonLD(cfg SiteConfig) string {
	name := cfg.Author
	if name == "" {
		name = cfg.Name
	}
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "ProfilePage",
		"url":      BuildURL(cfg.URL),
		"mainEntity": map[string]string{
			"@type":       "Person",
			"name":        name,
			"description": cfg.Description,
		},
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// SkillNames lists skill names, for meta keywords.
func SkillNames(skills ...[]content.Skill) []string {
	var out []string
	for _, list := range skills {
		for _, s := range list {
			if s.Name != "" {
				out = append(out, s.Name)
			}
		}
	}
	return out
}
