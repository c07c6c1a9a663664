// Package config provides configuration management for the ageview CLI.
package config

import "time"

// APIConfig locates the ageing backend.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

// DetailsConfig controls how detail pages are fetched and cached.
type DetailsConfig struct {
	PageSize   int `koanf:"page_size" validate:"gte=1,lte=10000"`
	CachePages int `koanf:"cache_pages" validate:"gte=1"`
}

// ChatConfig controls transcript persistence.
type ChatConfig struct {
	SessionKey string `koanf:"session_key" validate:"required"`
}

// LogConfig controls file logging used by the terminal dashboard.
type LogConfig struct {
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
}

// UIConfig holds configuration for the browser dashboard.
type UIConfig struct {
	Port          int           `koanf:"port" validate:"gte=1,lte=65535"`
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl" validate:"gte=0"`
	AutoOpen      bool          `koanf:"auto_open"`
}

// Config holds all CLI configuration options.
type Config struct {
	API          APIConfig     `koanf:"api"`
	Details      DetailsConfig `koanf:"details"`
	Chat         ChatConfig    `koanf:"chat"`
	Log          LogConfig     `koanf:"log"`
	UI           UIConfig      `koanf:"ui"`
	StatePath    string        `koanf:"state_path" validate:"required"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output" validate:"omitempty,oneof=auto text markdown json yaml"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8008"
	DefaultTimeout    = 60 * time.Second
	DefaultPageSize   = 100
	DefaultCachePages = 10
	DefaultSessionKey = "ai_chat_history"
	DefaultStateFile  = ".ageview/state.db"
	DefaultLogFile    = ".ageview/ageview.log"
	DefaultUIPort     = 8765
	DefaultSessionTTL = 12 * time.Hour
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout},
		Details: DetailsConfig{PageSize: DefaultPageSize, CachePages: DefaultCachePages},
		Chat:    ChatConfig{SessionKey: DefaultSessionKey},
		Log:     LogConfig{File: DefaultLogFile, MaxSizeMB: 10, MaxBackups: 3},
		UI: UIConfig{
			Port:       DefaultUIPort,
			SessionTTL: DefaultSessionTTL,
			AutoOpen:   true,
		},
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
	}
}
