package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Gemini struct {
		ApiKey          string `yaml:"apiKey"`
		CheckTimeoutSec int    `yaml:"checkTimeoutSec"`
	} `yaml:"gemini"`

	Engine struct {
		HistoryWindow       int     `yaml:"historyWindow"`
		EscalateStreak      int     `yaml:"escalateStreak"`
		EscalateThreshold   float64 `yaml:"escalateThreshold"`
		DeescalateThreshold float64 `yaml:"deescalateThreshold"`
	} `yaml:"engine"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.CheckTimeoutSec <= 0 {
		c.Gemini.CheckTimeoutSec = 5
	}
	if c.Engine.HistoryWindow <= 0 {
		c.Engine.HistoryWindow = 5
	}
	if c.Engine.EscalateStreak <= 0 {
		c.Engine.EscalateStreak = 3
	}
	if c.Engine.EscalateThreshold <= 0 {
		c.Engine.EscalateThreshold = 85
	}
	if c.Engine.DeescalateThreshold <= 0 {
		c.Engine.DeescalateThreshold = 55
	}
}
