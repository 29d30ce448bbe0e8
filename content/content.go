// Package content loads what the public page shows: profile image, skills
// and the showcase projects. Remote data replaces the bundled defaults
// section by section; a failing section keeps its defaults.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Skill is a technical skill with a 0-100 proficiency.
type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// SoftSkill is a non-technical skill card.
type SoftSkill struct {
	Name        string   `yaml:"name"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// Showcase is a project shown in the public carousel. It is independent of
// the admin-managed project records.
type Showcase struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
	Link        string   `yaml:"link"`
}

// Page is everything the public page renders.
type Page struct {
	ProfileImage string      `yaml:"profileImage"`
	Frontend     []Skill     `yaml:"frontend"`
	Backend      []Skill     `yaml:"backend"`
	Soft         []SoftSkill `yaml:"soft"`
	Projects     []Showcase  `yaml:"projects"`

	// Degraded lists the sections served from defaults because the remote
	// read failed.
	Degraded []string `yaml:"-"`
}

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns a fresh copy of the bundled page content.
func Defaults() Page {
	p, err := ParseDefaults(defaultsYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseDefaults decodes a YAML page definition.
func ParseDefaults(data []byte) (Page, error) {
	var p Page
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Page{}, fmt.Errorf("parse content defaults: %w", err)
	}
	return p, nil
}
