package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultPreset is used when no preset is configured
const DefaultPreset = "cwts"

const defaultRegistryURL = "https://api.crossref.org"

// Preset is a named deployment target
type Preset struct {
	Name        string
	BaseURL     string
	RegistryURL string
	Accent      lipgloss.Color // header accent in the dashboard
}

var presets = map[string]Preset{
	"production": {
		Name:        "production",
		BaseURL:     "https://apps.crossref.org/prep/data",
		RegistryURL: defaultRegistryURL,
		Accent:      lipgloss.Color("99"),
	},
	"staging": {
		Name:        "staging",
		BaseURL:     "https://apps.crossref.org/prep-staging/data",
		RegistryURL: defaultRegistryURL,
		Accent:      lipgloss.Color("214"),
	},
	"cwts": {
		Name:        "cwts",
		BaseURL:     "https://apps.crossref.org/prep/data",
		RegistryURL: defaultRegistryURL,
		Accent:      lipgloss.Color("51"),
	},
}

// Presets lists the preset names in a stable order
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupPreset returns the named preset
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ApplyPreset fills the API URLs from a preset. Explicit URLs are kept
// unless force is set.
func (c *Config) ApplyPreset(name string, force bool) error {
	if name == "" {
		name = DefaultPreset
	}
	p, ok := LookupPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q (known: %s)", name, strings.Join(Presets(), ", "))
	}
	c.Preset = p.Name
	if force || c.API.BaseURL == "" {
		c.API.BaseURL = p.BaseURL
	}
	if force || c.API.RegistryURL == "" {
		c.API.RegistryURL = p.RegistryURL
	}
	return nil
}

// Accent returns the header colour of the configured preset
func (c *Config) Accent() lipgloss.Color {
	if p, ok := LookupPreset(c.Preset); ok {
		return p.Accent
	}
	return lipgloss.Color("99")
}
