package types

import "time"

// HTTPConfig holds shared HTTP settings for components that call the
// trial registry.
type HTTPConfig struct {
	// Timeout is the request timeout for unfiltered registry queries.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// LocationTimeout is the request timeout used when a location filter is
	// present; location-constrained registry queries are noticeably slower.
	LocationTimeout time.Duration `json:"location_timeout" yaml:"location_timeout"`

	// UserAgent is the User-Agent header sent with registry requests
	// (e.g. "clinibridge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the trial search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of studies requested per search (default 10).
	PageSize int `json:"page_size" yaml:"page_size"`

	// CacheTTL is how long a search result stays cached (default 5m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// CacheSize bounds the number of cached searches (default 256).
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// RegistryRPS limits outbound registry requests per second (default 2).
	RegistryRPS float64 `json:"registry_rps" yaml:"registry_rps"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: "claude" or "gemini".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// MatchConfig holds settings for the trial scoring stage.
type MatchConfig struct {
	AIConfig `yaml:",inline"`
}

// EligibilityConfig holds settings for the eligibility explainer stage.
type EligibilityConfig struct {
	AIConfig `yaml:",inline"`

	// ContextLimit caps the criteria text sent to the AI (default 8000).
	ContextLimit int `json:"context_limit" yaml:"context_limit"`
}

// StoreConfig holds settings for the local SQLite store.
type StoreConfig struct {
	// Path is the database file path (default "clinibridge.db").
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all stage configurations.
type Config struct {
	Search      SearchConfig      `json:"search" yaml:"search"`
	Match       MatchConfig       `json:"match" yaml:"match"`
	Eligibility EligibilityConfig `json:"eligibility" yaml:"eligibility"`
	Store       StoreConfig       `json:"store" yaml:"store"`
	Server      ServerConfig      `json:"server" yaml:"server"`
}
