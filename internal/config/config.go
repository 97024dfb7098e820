package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	CORS      CORSConfig      `yaml:"cors"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// StorageConfig points at the hosted object store
type StorageConfig struct {
	BaseURL    string `yaml:"base_url"`
	ServiceKey string `yaml:"service_key"`
	Bucket     string `yaml:"bucket"`
}

// UploadConfig tunes the image upload orchestrator
type UploadConfig struct {
	MaxGalleryFiles       int `yaml:"max_gallery_files"`
	WindowSize            int `yaml:"window_size"`
	WindowPauseMillis     int `yaml:"window_pause_millis"`
	HeroTimeoutSeconds    int `yaml:"hero_timeout_seconds"`
	GalleryTimeoutSeconds int `yaml:"gallery_timeout_seconds"`
	LinkTimeoutSeconds    int `yaml:"link_timeout_seconds"`
}

// RateLimitConfig contains upload rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// IndexingConfig controls the nightly search reindex job
type IndexingConfig struct {
	NightlyEnabled bool   `yaml:"nightly_enabled"`
	NightlyTime    string `yaml:"nightly_time"`
}

// CORSConfig lists allowed frontend origins
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Bucket: "media",
		},
		Upload: UploadConfig{
			MaxGalleryFiles:       15,
			WindowSize:            2,
			WindowPauseMillis:     500,
			HeroTimeoutSeconds:    60,
			GalleryTimeoutSeconds: 45,
			LinkTimeoutSeconds:    15,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,
		},
		Indexing: IndexingConfig{
			NightlyEnabled: true,
			NightlyTime:    "03:00",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetWindowPause returns the inter-window pause as a duration
func (c *UploadConfig) GetWindowPause() time.Duration {
	return time.Duration(c.WindowPauseMillis) * time.Millisecond
}

// GetHeroTimeout returns the hero upload timeout as a duration
func (c *UploadConfig) GetHeroTimeout() time.Duration {
	return time.Duration(c.HeroTimeoutSeconds) * time.Second
}

// GetGalleryTimeout returns the per-item gallery upload timeout as a duration
func (c *UploadConfig) GetGalleryTimeout() time.Duration {
	return time.Duration(c.GalleryTimeoutSeconds) * time.Second
}

// GetLinkTimeout returns the metadata link timeout as a duration
func (c *UploadConfig) GetLinkTimeout() time.Duration {
	return time.Duration(c.LinkTimeoutSeconds) * time.Second
}
