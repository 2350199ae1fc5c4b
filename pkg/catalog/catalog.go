// Package catalog loads the packaged candidate options for each camera
// setting: display labels paired with the values stored in preferences.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrMisaligned is returned when labels and values differ in length.
var ErrMisaligned = errors.New("catalog: entries and entry_values are not aligned")

// Category is the candidate list for one setting.
type Category struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`

	// Param is the camera current-value parameter the setting drives.
	Param string `yaml:"param" json:"param"`

	// Supported names the capability parameter that gates the candidates.
	// Empty means the candidates are offered without a hardware check.
	Supported string `yaml:"supported,omitempty" json:"supported,omitempty"`

	Entries     []string `yaml:"entries" json:"entries"`
	EntryValues []string `yaml:"entry_values" json:"entry_values"`

	// Default is stored when no selection exists. Only used for ungated categories.
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// Gated reports whether the category is filtered by hardware capabilities.
func (c Category) Gated() bool {
	return c.Supported != ""
}

// IndexOf returns the index of value among EntryValues, or -1.
func (c Category) IndexOf(value string) int {
	for i, v := range c.EntryValues {
		if v == value {
			return i
		}
	}
	return -1
}

// Catalog holds all categories in declaration order.
type Catalog struct {
	Version    int        `yaml:"version"`
	Categories []Category `yaml:"categories"`

	index map[string]int
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.reindex()
	return &c, nil
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic("catalog: embedded catalog invalid: " + err.Error())
	}
	return c
}

// LoadOrDefault loads path, or returns the embedded catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks structural invariants of every category.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool)

	for i, cat := range c.Categories {
		if cat.Key == "" {
			errs = append(errs, fmt.Errorf("category %d: key is required", i))
			continue
		}
		if seen[cat.Key] {
			errs = append(errs, fmt.Errorf("%s: duplicate key", cat.Key))
		}
		seen[cat.Key] = true

		if cat.Param == "" {
			errs = append(errs, fmt.Errorf("%s: param is required", cat.Key))
		}
		if len(cat.Entries) != len(cat.EntryValues) {
			errs = append(errs, fmt.Errorf("%s: %w (%d labels, %d values)",
				cat.Key, ErrMisaligned, len(cat.Entries), len(cat.EntryValues)))
		}
		if len(cat.EntryValues) == 0 {
			errs = append(errs, fmt.Errorf("%s: no candidates", cat.Key))
		}
		if cat.Default != "" && cat.IndexOf(cat.Default) < 0 {
			errs = append(errs, fmt.Errorf("%s: default %q is not a candidate value", cat.Key, cat.Default))
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) reindex() {
	c.index = make(map[string]int, len(c.Categories))
	for i, cat := range c.Categories {
		c.index[cat.Key] = i
	}
}

// Category returns the category for key.
func (c *Catalog) Category(key string) (Category, bool) {
	if c.index == nil {
		c.reindex()
	}
	i, ok := c.index[key]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// Keys returns category keys in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		keys[i] = cat.Key
	}
	return keys
}
