package trafficlight

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/autocore-ai/RSU/internal/config"
)

// Config is the traffic-light plugin's own YAML configuration.
type Config struct {
	Port         string              `yaml:"port"`
	RoadID       string              `yaml:"road_id"`
	LightIDGroup map[string][]string `yaml:"light_id_group"`
	Master       string              `yaml:"master"`
	Color        int                 `yaml:"color"`
	Duration     struct {
		Green   int64 `yaml:"green"`
		Yellow  int64 `yaml:"yellow"`
		Red     int64 `yaml:"red"`
		Unknown int64 `yaml:"unknown"`
	} `yaml:"duration"`
	CenterDBURL string `yaml:"center_db_url"`
}

func defaultConfig() Config {
	var c Config
	c.Port = "8081"
	c.RoadID = "1111111"
	c.LightIDGroup = map[string][]string{
		"group1": {"light_1", "light_2"},
		"group2": {"light_3", "light_4"},
	}
	c.Master = "group1"
	c.Color = 1
	c.Duration.Green = 7
	c.Duration.Yellow = 3
	c.Duration.Red = 10
	c.Duration.Unknown = -1
	c.CenterDBURL = "http://127.0.0.1:8080/rsu/rsu_id/traffic_light/status/"
	return c
}

// LoadConfig reads the traffic-light config at path, writing out a default
// file first if none exists (mirrors the roster's own self-seeding
// behavior, applied here to the plugin's own config).
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("create traffic light config directory: %w", err)
		}
		out, err := yaml.Marshal(defaultConfig())
		if err != nil {
			return nil, fmt.Errorf("marshal default traffic light config: %w", err)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return nil, fmt.Errorf("write default traffic light config: %w", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read traffic light config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse traffic light config %s: %w", path, err)
	}

	if cfg.RoadID == "" {
		return nil, fmt.Errorf("traffic light config %s: missing required field road_id", path)
	}
	if cfg.Master == "" {
		return nil, fmt.Errorf("traffic light config %s: missing required field master", path)
	}
	if _, ok := cfg.LightIDGroup[cfg.Master]; !ok {
		return nil, fmt.Errorf("traffic light config %s: master group %q not present in light_id_group", path, cfg.Master)
	}

	cfg.CenterDBURL = config.SubstituteHostIP(cfg.CenterDBURL)
	return &cfg, nil
}
