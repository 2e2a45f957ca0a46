package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets YAML carry durations as strings like "24h" or "720h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		BasePath string `yaml:"base_path"`
	} `yaml:"auth"`
	JWT struct {
		Secret     string   `yaml:"secret"`
		AccessTTL  Duration `yaml:"access_ttl"`
		RefreshTTL Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`
	Cookie struct {
		Secure      bool   `yaml:"secure"`
		AccessPath  string `yaml:"access_path"`
		RefreshPath string `yaml:"refresh_path"`
	} `yaml:"cookie"`
}

// LoadConfig reads configuration from the specified YAML file.
// The JWT secret can be overridden with the JWT_SECRET environment variable
// so it never has to live in the config file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}

	config.applyDefaults()

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not set (config file or JWT_SECRET)")
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Auth.BasePath == "" {
		c.Auth.BasePath = "/auth"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = Duration(24 * time.Hour)
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = Duration(30 * 24 * time.Hour)
	}
	if c.Cookie.AccessPath == "" {
		c.Cookie.AccessPath = "/"
	}
	if c.Cookie.RefreshPath == "" {
		c.Cookie.RefreshPath = c.Auth.BasePath + "/refresh"
	}
}
