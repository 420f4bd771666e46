package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// TomlServer holds HTTP server settings
type TomlServer struct {
	Hostname string `toml:"hostname"`
	Port     int    `toml:"port"`
}

// TomlFeed holds the feed composition tuning knobs. The defaults
// reproduce the original product behaviour and should only be changed
// together with the API consumers.
type TomlFeed struct {
	PopularShare       float64 `toml:"popular_share"`
	PopularWindowHours int     `toml:"popular_window_hours"`
	OverfetchFactor    int     `toml:"overfetch_factor"`
}

// TomlEnrichment holds enrichment stage policy flags
type TomlEnrichment struct {
	CountViewsOnRead bool `toml:"count_views_on_read"`
}

// TomlDatabase holds database settings
type TomlDatabase struct {
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Server     TomlServer     `toml:"server"`
	Database   TomlDatabase   `toml:"database"`
	Feed       TomlFeed       `toml:"feed"`
	Enrichment TomlEnrichment `toml:"enrichment"`
}

// Default returns the configuration with the shipped defaults. The
// 70/30 split and three day popularity window are the empirically
// chosen product constants.
func Default() *TomlConfig {
	return &TomlConfig{
		Server: TomlServer{
			Hostname: "localhost",
			Port:     3000,
		},
		Database: TomlDatabase{
			Path:          "chirp.db",
			RetentionDays: 90,
		},
		Feed: TomlFeed{
			PopularShare:       0.3,
			PopularWindowHours: 72,
			OverfetchFactor:    3,
		},
		Enrichment: TomlEnrichment{
			CountViewsOnRead: true,
		},
	}
}

// PopularWindow returns the recency window as a duration.
func (c *TomlFeed) PopularWindow() time.Duration {
	return time.Duration(c.PopularWindowHours) * time.Hour
}

func LoadConfig(path string) (*TomlConfig, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}
