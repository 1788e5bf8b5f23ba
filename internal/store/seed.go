package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Templates []Template `yaml:"templates"`
}

// ParseTemplates decodes a YAML document of the form `templates: [...]`.
func ParseTemplates(data []byte) ([]Template, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	for i, t := range f.Templates {
		if t.SortOrder == 0 {
			f.Templates[i].SortOrder = i + 1
		}
	}
	return f.Templates, nil
}

// SeedTemplates loads a YAML template file into the store and returns the count.
func (s *Store) SeedTemplates(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	templates, err := ParseTemplates(data)
	if err != nil {
		return 0, err
	}
	if err := s.UpsertTemplates(ctx, templates); err != nil {
		return 0, err
	}
	return len(templates), nil
}
