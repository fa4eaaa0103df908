package model

import "time"

// Config holds all veristream configuration
type Config struct {
	Ingest      IngestConfig      `yaml:"ingest" json:"ingest"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Store       StoreConfig       `yaml:"store" json:"store"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
}

// IngestConfig controls event-stream consumption
type IngestConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"` // Stalled-pipeline cutoff per claim (0 disables)
	LaneBuffer  int           `yaml:"lane_buffer" json:"lane_buffer"`   // Per-claim event channel depth
}

// ConcurrencyConfig controls parallelism
type ConcurrencyConfig struct {
	ReplayWorkers int `yaml:"replay_workers" json:"replay_workers"` // Concurrent event-stream replays
}

// StoreConfig controls report persistence
type StoreConfig struct {
	Dir       string        `yaml:"dir" json:"dir"`               // Disk store directory
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"` // In-memory layer TTL
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`     // Disk retention (0 = keep forever)
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// LLMConfig holds optional share-summary generation settings.
// The summary is presentation-only; it never affects verification state.
type LLMConfig struct {
	Provider          string  `yaml:"provider" json:"provider"` // "openai" or "" (disabled)
	Model             string  `yaml:"model" json:"model"`
	APIKey            string  `yaml:"-" json:"-"` // From environment only, never persisted
	BaseURL           string  `yaml:"base_url" json:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxTokens         int     `yaml:"max_tokens" json:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			IdleTimeout: 2 * time.Minute,
			LaneBuffer:  64,
		},
		Concurrency: ConcurrencyConfig{
			ReplayWorkers: 4,
		},
		Store: StoreConfig{
			Dir:       "", // Resolved to ~/.veristream/reports at startup
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   0,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:          "",
			TimeoutSeconds:    30,
			MaxTokens:         1000,
			RequestsPerSecond: 1,
			Burst:             2,
		},
	}
}
