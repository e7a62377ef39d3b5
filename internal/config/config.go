package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Labeling LabelingConfig `yaml:"labeling"`
	Report   ReportConfig   `yaml:"report"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type YouTubeConfig struct {
	APIKey      string `yaml:"api_key"`
	MaxComments int    `yaml:"max_comments"`
	Order       string `yaml:"order"`
	Workers     int    `yaml:"workers"`
}

type LabelingConfig struct {
	DictionaryPath string `yaml:"dictionary_path"`
	IncludeDebug   bool   `yaml:"include_debug"`
}

type ReportConfig struct {
	DaysWindow int `yaml:"days_window"`
	// Frames maps video_id to its experimental frame ("Loss" or "Gain") for
	// runs where the coded file carries no frame column.
	Frames map[string]string `yaml:"frames"`
}

// Load reads a YAML config file. Environment references like ${YOUTUBE_API_KEY}
// are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/comments.db"
	}
	if c.YouTube.MaxComments == 0 {
		c.YouTube.MaxComments = 200
	}
	if c.YouTube.Order == "" {
		c.YouTube.Order = "time"
	}
	if c.YouTube.Workers == 0 {
		c.YouTube.Workers = 3
	}
	if c.Report.DaysWindow == 0 {
		c.Report.DaysWindow = 14
	}
}
