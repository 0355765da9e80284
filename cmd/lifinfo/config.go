package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries lifinfo settings loaded from a YAML file. Command line
// flags override individual fields.
type Config struct {
	Output struct {
		// Format selects "text" or "json" output.
		Format string `yaml:"format"`

		// Metadata dumps the full XML metadata tree as JSON.
		Metadata bool `yaml:"metadata"`

		// Stats reads every image and prints pixel statistics.
		Stats bool `yaml:"stats"`
	} `yaml:"output"`

	Read struct {
		// MemoryMap maps local containers instead of reading them.
		MemoryMap bool `yaml:"memoryMap"`

		// KeepSingletons retains axes of length one in reported shapes.
		KeepSingletons bool `yaml:"keepSingletons"`
	} `yaml:"read"`

	S3 struct {
		// Region overrides the region resolved from the environment.
		Region string `yaml:"region"`

		// Endpoint points at an S3-compatible server such as MinIO.
		Endpoint string `yaml:"endpoint"`

		// UsePathStyle addresses buckets by path instead of subdomain,
		// required by most non-AWS endpoints.
		UsePathStyle bool `yaml:"usePathStyle"`
	} `yaml:"s3"`

	Log struct {
		// Level is a zap level name: debug, info, warn, error.
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// defaultConfig returns the built-in settings.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Output.Format = "text"
	cfg.Log.Level = "warn"
	return cfg
}

// loadConfig reads settings from a YAML file. A missing file yields the
// defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// writeDefaultConfig writes the default settings to path, refusing to
// overwrite an existing file.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	data, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
