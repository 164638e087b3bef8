// Package catalog loads explore schemas and resolves field references.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"prism/internal/domain"
)

// LoadOptions configures YAML loading behavior.
type LoadOptions struct {
	AllowUnknownFields bool
}

// LoadDirectory reads every *.yml / *.yaml file in dir, one explore per
// file, validates each schema, and returns a Registry.
func LoadDirectory(dir string) (*Registry, error) {
	return LoadDirectoryWithOptions(dir, LoadOptions{})
}

// LoadDirectoryWithOptions reads all explore YAML files using caller-provided
// loading options.
func LoadDirectoryWithOptions(dir string, opts LoadOptions) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("explores directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("explores directory: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read explores directory: %w", err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		explore, err := loadExploreFile(path, opts)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(explore); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return reg, nil
}

func loadExploreFile(path string, opts LoadOptions) (*domain.Explore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var explore domain.Explore
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(!opts.AllowUnknownFields)
	if err := dec.Decode(&explore); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := explore.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &explore, nil
}

// Registry holds the loaded explores by name.
type Registry struct {
	explores map[string]*domain.Explore
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{explores: map[string]*domain.Explore{}}
}

// Add registers an explore, rejecting duplicate names.
func (r *Registry) Add(explore *domain.Explore) error {
	if _, exists := r.explores[explore.Name]; exists {
		return domain.ErrValidation("explore %q is defined more than once", explore.Name)
	}
	r.explores[explore.Name] = explore
	return nil
}

// Get returns the explore with the given name.
func (r *Registry) Get(name string) (*domain.Explore, error) {
	explore, ok := r.explores[name]
	if !ok {
		return nil, domain.ErrNotFound("explore %q not found", name)
	}
	return explore, nil
}

// Names returns all registered explore names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.explores))
	for name := range r.explores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
