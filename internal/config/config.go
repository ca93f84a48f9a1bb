package config

import (
	"fmt"
	"os"
	"time"

	"braindump-service/internal/llm"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor BRAINDUMP_CONFIG names a file
const DefaultPath = "configs/config.yml"

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // console or json
	} `yaml:"logging"`

	// Tried in order; later requests move on after repeated failures
	Providers []llm.ProviderConfig `yaml:"providers"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`

	Extraction struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"extraction"`

	Database struct {
		Type string `yaml:"type"` // "sqlite" or "postgres"
		Path string `yaml:"path"` // SQLite file
		URL  string `yaml:"url"`  // PostgreSQL DSN
	} `yaml:"database"`

	Pipeline struct {
		SurfaceWarnings bool `yaml:"surface_warnings"`
	} `yaml:"pipeline"`

	Events struct {
		Enabled  bool   `yaml:"enabled"`
		AMQPURL  string `yaml:"amqp_url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"events"`
}

// ResolvePath picks the explicit path, then BRAINDUMP_CONFIG, then DefaultPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("BRAINDUMP_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// LoadConfig loads configuration from YAML file
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

	config.applyDefaults()

	// Expand environment variables in secrets and DSNs
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}
	config.Database.URL = os.ExpandEnv(config.Database.URL)
	config.Events.AMQPURL = os.ExpandEnv(config.Events.AMQPURL)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	if len(c.Providers) == 0 {
		c.Providers = []llm.ProviderConfig{{
			Type:   llm.ProviderOpenAI,
			APIKey: "${OPENAI_API_KEY}",
		}}
	}

	if c.MaxFailuresBeforeSwitch == 0 {
		c.MaxFailuresBeforeSwitch = 3
	}

	if c.Extraction.Timeout == 0 {
		c.Extraction.Timeout = 30 * time.Second
	}

	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}

	if c.Database.Path == "" {
		c.Database.Path = "./data/braindump.db"
	}

	if c.Events.Exchange == "" {
		c.Events.Exchange = "braindump"
	}
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database type: %s", c.Database.Type)
	}

	if c.Events.Enabled && c.Events.AMQPURL == "" {
		return fmt.Errorf("events.amqp_url is required when events are enabled")
	}

	if c.Extraction.Timeout < 0 {
		return fmt.Errorf("extraction.timeout must be positive")
	}

	return nil
}
