// Package domain provides the catalogue of investigation templates that
// supply default analysis steps and acceptance criteria per task domain.
package domain

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/taskmessager/internal/model"
)

// Catalog maps a domain key to its template.
type Catalog map[string]model.Domain

// fileFormat is the YAML layout accepted by LoadFile.
type fileFormat struct {
	Domains map[string]model.Domain `yaml:"domains"`
}

// Builtin returns a fresh copy of the built-in catalogue.
func Builtin() Catalog {
	c := make(Catalog, len(builtin))
	for key, d := range builtin {
		c[key] = clone(d)
	}
	return c
}

// LoadFile reads domain templates from a YAML file and merges them over the
// built-in catalogue. Entries in the file replace built-ins with the same key.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read domains file '%s': %w", path, err)
	}

	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("could not parse YAML from '%s': %w", path, err)
	}
	if len(parsed.Domains) == 0 {
		return nil, fmt.Errorf("domains file '%s' defines no domains", path)
	}

	c := Builtin()
	for key, d := range parsed.Domains {
		if err := check(key, d); err != nil {
			return nil, fmt.Errorf("domains file '%s': %w", path, err)
		}
		c[key] = clone(d)
	}
	return c, nil
}

func check(key string, d model.Domain) error {
	switch {
	case key == "":
		return errors.New("domain key must not be empty")
	case d.Label == "":
		return fmt.Errorf("domain %q has no label", key)
	case len(d.AnalysisSteps) == 0:
		return fmt.Errorf("domain %q has no analysis_steps", key)
	case len(d.AcceptanceCriteria) == 0:
		return fmt.Errorf("domain %q has no acceptance_criteria", key)
	}
	for i, step := range d.AnalysisSteps {
		if step.Title == "" || step.Detail == "" {
			return fmt.Errorf("domain %q analysis step %d needs both title and detail", key, i)
		}
	}
	return nil
}

// Lookup returns the template for key. The returned value is a copy.
func (c Catalog) Lookup(key string) (model.Domain, bool) {
	d, ok := c[key]
	if !ok {
		return model.Domain{}, false
	}
	return clone(d), true
}

// Keys returns the domain keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Summaries returns the short listing of every domain, keyed by domain.
func (c Catalog) Summaries() map[string]model.DomainSummary {
	out := make(map[string]model.DomainSummary, len(c))
	for key, d := range c {
		titles := make([]string, 0, len(d.AnalysisSteps))
		for _, step := range d.AnalysisSteps {
			titles = append(titles, step.Title)
		}
		out[key] = model.DomainSummary{
			Label:                d.Label,
			DefaultSteps:         titles,
			DefaultCriteriaCount: len(d.AcceptanceCriteria),
		}
	}
	return out
}

func clone(d model.Domain) model.Domain {
	return model.Domain{
		Label:              d.Label,
		AnalysisSteps:      append([]model.AnalysisStep(nil), d.AnalysisSteps...),
		AcceptanceCriteria: append([]string(nil), d.AcceptanceCriteria...),
	}
}
