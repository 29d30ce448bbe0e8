package projects

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultStatus is the display tag given to every new record.
const DefaultStatus = "Live"

// Record is a project as listed in the admin panel and persisted in the
// kv store. Title, Description and GithubLink are never empty for a record
// produced by the Manager.
type Record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	GithubLink  string   `json:"githubLink"`
	LiveLink    string   `json:"liveLink,omitempty"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
}

// UnmarshalJSON accepts numeric ids, which older snapshots used.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Record(aux.plain)
	r.ID = ""
	if len(aux.ID) == 0 || string(aux.ID) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.ID, &s); err == nil {
		r.ID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.ID, &n); err != nil {
		return fmt.Errorf("project id: %w", err)
	}
	r.ID = n.String()
	return nil
}

func (r Record) clone() Record {
	if r.Tags != nil {
		r.Tags = append([]string(nil), r.Tags...)
	}
	return r
}

// Draft holds unvalidated form values for a create or update.
type Draft struct {
	Title       string
	Description string
	GithubLink  string
	LiveLink    string
	Image       string
	Tags        []string
}

// DraftFrom returns a draft pre-filled from an existing record, as the edit
// form does.
func DraftFrom(r Record) Draft {
	return Draft{
		Title:       r.Title,
		Description: r.Description,
		GithubLink:  r.GithubLink,
		LiveLink:    r.LiveLink,
		Image:       r.Image,
		Tags:        append([]string(nil), r.Tags...),
	}
}

// normalized trims every field and drops blank tags.
func (d Draft) normalized() Draft {
	out := Draft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		GithubLink:  strings.TrimSpace(d.GithubLink),
		LiveLink:    strings.TrimSpace(d.LiveLink),
		Image:       strings.TrimSpace(d.Image),
	}
	for _, t := range d.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out.Tags = append(out.Tags, t)
		}
	}
	return out
}

// ParseTags splits a comma separated tag field.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
