// Package roster loads the versioned list of schools whose students qualify
// for the Georgia Promise Scholarship, together with the program details
// shown to families.
package roster

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed georgia_promise.yaml
var defaultDocument []byte

// School is one entry of the school dropdown.
type School struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	Zone    string `yaml:"zone,omitempty" json:"zone,omitempty"`
}

// Program describes the scholarship program.
type Program struct {
	Name                string   `yaml:"name" json:"name"`
	Amount              int      `yaml:"amount" json:"amount"`
	ApplicationSite     string   `yaml:"application_site" json:"application_site"`
	ApplicationURL      string   `yaml:"application_url" json:"application_url"`
	ApplicationWindow   string   `yaml:"application_window" json:"application_window"`
	ApplicationDeadline string   `yaml:"application_deadline" json:"application_deadline"`
	Description         string   `yaml:"description" json:"description"`
	EligibleUses        []string `yaml:"eligible_uses" json:"eligible_uses"`
	Requirements        []string `yaml:"requirements" json:"requirements"`
}

// Roster is an immutable, versioned roster document.
type Roster struct {
	Version           string   `yaml:"version" json:"version"`
	Program           Program  `yaml:"program" json:"program"`
	QualifyingSchools []School `yaml:"qualifying_schools" json:"qualifying_schools"`
	OtherSchools      []School `yaml:"other_schools" json:"other_schools"`

	index map[string]struct{}
}

// Parse decodes a roster document.
func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if strings.TrimSpace(r.Version) == "" {
		return nil, fmt.Errorf("roster version is required")
	}
	if len(r.QualifyingSchools) == 0 {
		return nil, fmt.Errorf("roster %s lists no qualifying schools", r.Version)
	}
	r.index = make(map[string]struct{}, len(r.QualifyingSchools))
	for _, school := range r.QualifyingSchools {
		if school.Name == "" {
			return nil, fmt.Errorf("roster %s has a school without a name", r.Version)
		}
		r.index[strings.ToLower(school.Name)] = struct{}{}
	}
	return &r, nil
}

// Load reads a roster from path, falling back to the embedded roster when path
// is empty.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Parse(defaultDocument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded roster.
func Default() *Roster {
	r, err := Parse(defaultDocument)
	if err != nil {
		panic(err)
	}
	return r
}

// Qualifies reports whether schoolName matches a qualifying school, ignoring
// case. An empty name never qualifies.
func (r *Roster) Qualifies(schoolName string) bool {
	if r == nil || schoolName == "" {
		return false
	}
	_, ok := r.index[strings.ToLower(schoolName)]
	return ok
}

// AllSchools returns qualifying schools followed by the other dropdown entries.
func (r *Roster) AllSchools() []School {
	if r == nil {
		return nil
	}
	all := make([]School, 0, len(r.QualifyingSchools)+len(r.OtherSchools))
	all = append(all, r.QualifyingSchools...)
	all = append(all, r.OtherSchools...)
	return all
}
