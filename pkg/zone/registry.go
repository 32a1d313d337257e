package zone

import (
	"fmt"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Built-in zone type tags.
const (
	TypeBasic        = "basic"
	TypeUnbreathable = "unbreathable"
)

// SupplyKindAir is the resource kind consumed in unbreathable zones.
const SupplyKindAir = "air"

// TypeConfig is the behavioral configuration for a zone type tag.
// Configs are looked up at dispatch time and never mutated.
type TypeConfig struct {
	Tag                string `yaml:"tag"`
	Label              string `yaml:"label"`
	NotifyOnEntry      bool   `yaml:"notify_on_entry"`
	RequiresSupplyRoll bool   `yaml:"requires_supply_roll"`
	SupplyKind         string `yaml:"supply_kind"`
}

// Registry maps zone type tags to their configs. Unknown or empty tags
// resolve to the basic config, so lookups never fail.
type Registry struct {
	configs map[string]TypeConfig
	basic   TypeConfig
}

// NewRegistry returns a registry seeded with the built-in zone types.
func NewRegistry() *Registry {
	basic := TypeConfig{
		Tag:           TypeBasic,
		Label:         "Basic Zone",
		NotifyOnEntry: true,
	}
	return &Registry{
		basic: basic,
		configs: map[string]TypeConfig{
			TypeBasic: basic,
			TypeUnbreathable: {
				Tag:                TypeUnbreathable,
				Label:              "Unbreathable Zone",
				NotifyOnEntry:      true,
				RequiresSupplyRoll: true,
				SupplyKind:         SupplyKindAir,
			},
		},
	}
}

// ConfigFor resolves a zone type tag to its config. An empty or unknown
// tag yields the basic config.
func (r *Registry) ConfigFor(zoneType string) TypeConfig {
	if cfg, ok := r.configs[zoneType]; ok {
		return cfg
	}
	return r.basic
}

// Tags returns the registered zone type tags.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.configs))
	for tag := range r.configs {
		tags = append(tags, tag)
	}
	return tags
}

// typeFile is the on-disk shape of a zone type override file.
type typeFile struct {
	Types []TypeConfig `yaml:"types"`
}

// LoadFile merges zone type configs from a YAML file over the built-ins.
// Types declared without a label get one title-cased from the tag.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read zone types file: %w", err)
	}
	return r.merge(data)
}

func (r *Registry) merge(data []byte) error {
	var f typeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse zone types file: %w", err)
	}

	titler := cases.Title(language.English)
	for _, cfg := range f.Types {
		if cfg.Tag == "" {
			return fmt.Errorf("zone type with empty tag")
		}
		if cfg.RequiresSupplyRoll && cfg.SupplyKind == "" {
			return fmt.Errorf("zone type %q requires a supply roll but has no supply kind", cfg.Tag)
		}
		if cfg.Label == "" {
			cfg.Label = titler.String(cfg.Tag) + " Zone"
		}
		r.configs[cfg.Tag] = cfg
		if cfg.Tag == TypeBasic {
			r.basic = cfg
		}
	}
	return nil
}
