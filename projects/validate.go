package projects

import (
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names used as Violations keys. They match the JSON field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldGithubLink  = "githubLink"
	FieldLiveLink    = "liveLink"
	FieldImage       = "image"
)

// Violations maps a field name to a human-readable reason. An empty map
// means the draft is valid.
type Violations map[string]string

// ValidationError is returned by Create and Update when the draft has
// violations. It is a user-input problem, never a fault.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid project: " + strings.Join(fields, ", ")
}

var validate = validator.New()

// isURL accepts absolute http, https and ftp URLs with a host.
func isURL(s string) bool {
	if validate.Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// isEphemeral reports whether ref only lives in the uploader's browser.
func isEphemeral(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "blob:") || strings.HasPrefix(lower, "data:")
}

// isDurable accepts site-absolute paths and http(s) URLs.
func isDurable(ref string) bool {
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return true
	}
	lower := strings.ToLower(ref)
	return (strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) && isURL(ref)
}

// Validate checks every field of d and collects all violations.
func Validate(d Draft) Violations {
	d = d.normalized()
	v := Violations{}

	if d.Title == "" {
		v[FieldTitle] = "Project title is required"
	}
	if d.Description == "" {
		v[FieldDescription] = "Project description is required"
	}
	switch {
	case d.GithubLink == "":
		v[FieldGithubLink] = "GitHub link is required"
	case !isURL(d.GithubLink):
		v[FieldGithubLink] = "Must be a valid URL"
	}
	if d.LiveLink != "" && !isURL(d.LiveLink) {
		v[FieldLiveLink] = "Must be a valid URL"
	}
	switch {
	case d.Image == "":
		v[FieldImage] = "Project image is required"
	case isEphemeral(d.Image):
		v[FieldImage] = "Project image must be uploaded before saving"
	case !isDurable(d.Image):
		v[FieldImage] = "Project image must be a URL or an uploaded file"
	}
	return v
}
