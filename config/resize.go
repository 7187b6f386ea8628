package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the resize configuration, loaded once at startup and
// treated as immutable afterwards.
type (
	Profile struct {
		// "inline" (default) transcodes during ingestion, "deferred"
		// leaves records for a later transcode call or the background
		// worker.
		Processing string `yaml:"processing"`

		Original OriginalSpec `yaml:"original"`

		// SizeKeys is the default scaling set, used for categories
		// without an entry in ScalingSets.
		SizeKeys    []string            `yaml:"sizeKeys"`
		ScalingSets map[string][]string `yaml:"scalingSets"`
		Sizes       map[string]SizeSpec `yaml:"sizes"`
	}

	OriginalSpec struct {
		Extension string `yaml:"extension"`
		MimeType  string `yaml:"mimeType"`
	}

	SizeSpec struct {
		// Width/Height <= 0 leaves that axis unconstrained.
		Width     int    `yaml:"width"`
		Height    int    `yaml:"height"`
		Extension string `yaml:"extension"`
		MimeType  string `yaml:"mimeType"`
		// ExtraArgs is passed verbatim to the external transform tool.
		ExtraArgs string `yaml:"extraArgs"`
	}
)

func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config - LoadProfile - os.ReadFile: %w", err)
	}

	p := &Profile{}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("config - LoadProfile - yaml.Unmarshal: %w", err)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("config - LoadProfile: %w", err)
	}

	return p, nil
}

func (p *Profile) validate() error {
	if p.Original.Extension == "" || p.Original.MimeType == "" {
		return fmt.Errorf("original extension and mimeType are required")
	}

	for _, key := range p.SizeKeys {
		if _, ok := p.Sizes[key]; !ok {
			return fmt.Errorf("default size key %q has no size definition", key)
		}
	}

	for cat, keys := range p.ScalingSets {
		for _, key := range keys {
			if _, ok := p.Sizes[key]; !ok {
				return fmt.Errorf("scaling set %q references unknown size key %q", cat, key)
			}
		}
	}

	for key, spec := range p.Sizes {
		if spec.Extension == "" || spec.MimeType == "" {
			return fmt.Errorf("size %q needs extension and mimeType", key)
		}
	}

	return nil
}

func (p *Profile) Deferred() bool {
	return strings.TrimSpace(p.Processing) == "deferred"
}

// SizesFor resolves the scaling set for a category, falling back to the
// default size list.
func (p *Profile) SizesFor(category string) []string {
	if keys, ok := p.ScalingSets[strings.ToLower(category)]; ok {
		return keys
	}

	return p.SizeKeys
}

func (p *Profile) Size(key string) (SizeSpec, bool) {
	spec, ok := p.Sizes[key]

	return spec, ok
}

// Categories lists every configured scaling set name, sorted, without
// the implicit default.
func (p *Profile) Categories() []string {
	names := make([]string, 0, len(p.ScalingSets))
	for name := range p.ScalingSets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
