package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EffectDef is one typed mutation an incident or choice applies to a slot
type EffectDef struct {
	Field string `yaml:"field"` // "credits" | "reputation" | "flag"
	Flag  string `yaml:"flag,omitempty"`
	Delta int    `yaml:"delta,omitempty"`
}

// ChoiceOptionDef is one selectable variant of a choice incident
type ChoiceOptionDef struct {
	ID      string      `yaml:"id"`
	Label   string      `yaml:"label"`
	Effects []EffectDef `yaml:"effects"`
}

// IncidentDef is a static incident card
type IncidentDef struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Target      string            `yaml:"target"` // "slot" | "teams" | "destinations" | "all"
	Effects     []EffectDef       `yaml:"effects,omitempty"`
	Options     []ChoiceOptionDef `yaml:"options,omitempty"`
}

// HasChoice reports whether the incident asks affected slots to pick an option
func (d IncidentDef) HasChoice() bool {
	return len(d.Options) > 0
}

// Option finds a choice option by ID
func (d IncidentDef) Option(id string) (ChoiceOptionDef, bool) {
	for _, opt := range d.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return ChoiceOptionDef{}, false
}

// PricingItem is one purchasable upgrade from the pricing table
type PricingItem struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Cost        int    `yaml:"cost"`
	Kind        string `yaml:"kind"` // "team" | "destination"
}

// SlotDef is one fixed roster slot with its starting resources
type SlotDef struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"` // "team" | "destination"
	Capacity   int    `yaml:"capacity"`
	Credits    int    `yaml:"credits"`
	Reputation int    `yaml:"reputation"`
}

// Catalogs bundles the read-only rule tables loaded at startup
type Catalogs struct {
	Incidents []IncidentDef `yaml:"incidents"`
	Pricing   []PricingItem `yaml:"pricing"`
	Roster    []SlotDef     `yaml:"roster"`
}

// Incident finds an incident definition by ID
func (c *Catalogs) Incident(id string) (IncidentDef, bool) {
	for _, def := range c.Incidents {
		if def.ID == id {
			return def, true
		}
	}
	return IncidentDef{}, false
}

// Item finds a pricing item by ID
func (c *Catalogs) Item(id string) (PricingItem, bool) {
	for _, item := range c.Pricing {
		if item.ID == id {
			return item, true
		}
	}
	return PricingItem{}, false
}

// LoadCatalogs reads incidents.yaml, pricing.yaml and roster.yaml from dir
func LoadCatalogs(dir string) (*Catalogs, error) {
	catalogs := &Catalogs{}
	files := map[string]any{
		"incidents.yaml": &catalogs.Incidents,
		"pricing.yaml":   &catalogs.Pricing,
		"roster.yaml":    &catalogs.Roster,
	}
	for name, dest := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, dest); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	if err := catalogs.validate(); err != nil {
		return nil, err
	}
	return catalogs, nil
}

func (c *Catalogs) validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("roster is empty")
	}
	seen := make(map[string]bool)
	for _, slot := range c.Roster {
		key := strings.ToLower(slot.Name)
		if seen[key] {
			return fmt.Errorf("duplicate roster slot %q", slot.Name)
		}
		seen[key] = true
		if slot.Kind != "team" && slot.Kind != "destination" {
			return fmt.Errorf("roster slot %q has unknown kind %q", slot.Name, slot.Kind)
		}
	}
	for _, def := range c.Incidents {
		if def.ID == "" {
			return fmt.Errorf("incident with empty id")
		}
		if len(def.Effects) == 0 && len(def.Options) == 0 {
			return fmt.Errorf("incident %q has neither effects nor options", def.ID)
		}
	}
	return nil
}
