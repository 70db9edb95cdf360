package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"restaurant_chat/src/model"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// ErrUnknownDomain is returned for catalogue entries outside the known domains
var ErrUnknownDomain = errors.New("unknown report domain")

// Endpoint is one report API path
type Endpoint struct {
	Path       string `yaml:"path"`
	TimeFilter bool   `yaml:"time_filter"`
}

// Catalogue maps every domain to the endpoints fetched for it
type Catalogue struct {
	Domains map[model.Domain][]Endpoint `yaml:"domains"`
}

// Endpoints returns the endpoints registered for d
func (c *Catalogue) Endpoints(d model.Domain) []Endpoint {
	return c.Domains[d]
}

// TimeFilterable reports whether path accepts a date range
func (c *Catalogue) TimeFilterable(path string) bool {
	for _, endpoints := range c.Domains {
		for _, e := range endpoints {
			if e.Path == path {
				return e.TimeFilter
			}
		}
	}
	return false
}

// Paths lists every endpoint path once, sorted
func (c *Catalogue) Paths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, endpoints := range c.Domains {
		for _, e := range endpoints {
			if !seen[e.Path] {
				seen[e.Path] = true
				paths = append(paths, e.Path)
			}
		}
	}
	sort.Strings(paths)
	return paths
}

// LoadCatalogue reads the catalogue at path, or the embedded default when
// path is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	data := defaultCatalogue
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading catalogue file: %w", err)
		}
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes and validates a YAML catalogue
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var catalogue Catalogue
	if err := yaml.UnmarshalStrict(data, &catalogue); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	known := make(map[model.Domain]bool, len(model.Domains))
	for _, d := range model.Domains {
		known[d] = true
	}

	for domain, endpoints := range catalogue.Domains {
		if !known[domain] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
		}
		for _, e := range endpoints {
			if !strings.HasPrefix(e.Path, "/") {
				return nil, fmt.Errorf("endpoint %q in %s must start with /", e.Path, domain)
			}
		}
	}

	return &catalogue, nil
}
