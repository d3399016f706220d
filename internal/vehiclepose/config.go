package vehiclepose

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/autocore-ai/RSU/internal/config"
)

// Config is the vehicle-pose plugin's own on-disk configuration. The
// zenoh-style subscribe path and the binary pose decode it would feed are
// deliberately not implemented here; only the forwarder loop's shape and
// its config/report plumbing are.
type Config struct {
	VehicleStatusZenohPath string `yaml:"vehicle_status_zenoh_path"`
	CenterDBURL            string `yaml:"center_db_url"`
	IntervalMillis         int64  `yaml:"interval"`
}

func defaultConfig() *Config {
	return &Config{
		VehicleStatusZenohPath: "/demo/dds/rt/current_pose",
		CenterDBURL:            "http://127.0.0.1:8080/rsu/rsu_id/vehicle/status/",
		IntervalMillis:         1000,
	}
}

// LoadConfig reads path, seeding it with defaultConfig on first run.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("create vehicle pose config dir: %w", err)
		}
		if err := writeDefault(path); err != nil {
			return nil, fmt.Errorf("seed vehicle pose config: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicle pose config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse vehicle pose config: %w", err)
	}
	if cfg.VehicleStatusZenohPath == "" {
		return nil, fmt.Errorf("vehicle pose config missing vehicle_status_zenoh_path")
	}
	if cfg.CenterDBURL == "" {
		return nil, fmt.Errorf("vehicle pose config missing center_db_url")
	}
	if cfg.IntervalMillis <= 0 {
		return nil, fmt.Errorf("vehicle pose config missing interval")
	}

	cfg.CenterDBURL = config.SubstituteHostIP(cfg.CenterDBURL)
	return &cfg, nil
}

func writeDefault(path string) error {
	data, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
