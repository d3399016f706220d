// Package config loads the YAML configuration files used across the RSU
// supervisor and its plugins, and implements the HOST_IP substitution rule
// shared by all of them: any config string containing the literal
// "127.0.0.1" has that substring replaced by the HOST_IP environment
// variable, when set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RSU is the top-level supervisor configuration.
type RSU struct {
	Port           string `yaml:"port"`
	CenterDBURL    string `yaml:"center_db_url"`
	ReportDuration int64  `yaml:"report_duration"`
}

// SubstituteHostIP replaces the literal "127.0.0.1" in s with the value of
// HOST_IP, if that environment variable is set. Strings without the literal
// are returned unchanged.
func SubstituteHostIP(s string) string {
	ip := os.Getenv("HOST_IP")
	if ip == "" {
		return s
	}
	return strings.ReplaceAll(s, "127.0.0.1", ip)
}

// LoadRSU reads and validates the top-level RSU configuration file. Unlike
// the plugin roster, this file is not auto-generated: a missing or
// malformed top-level config is a fatal bootstrap error.
func LoadRSU(path string) (*RSU, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rsu config %s: %w", path, err)
	}

	var cfg RSU
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse rsu config %s: %w", path, err)
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("rsu config %s: missing required field port", path)
	}
	if cfg.CenterDBURL == "" {
		return nil, fmt.Errorf("rsu config %s: missing required field center_db_url", path)
	}
	if cfg.ReportDuration <= 0 {
		return nil, fmt.Errorf("rsu config %s: report_duration must be positive", path)
	}

	cfg.CenterDBURL = SubstituteHostIP(cfg.CenterDBURL)
	return &cfg, nil
}

// EnsureParentDir creates the parent directory of path if it does not
// already exist.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
