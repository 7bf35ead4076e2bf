package model

import "time"

// Config is the complete concordance configuration.
// Values come from defaults, then the config file, then CONCORDANCE_* env vars, then flags.
type Config struct {
	Tokenizer    TokenizerConfig    `yaml:"tokenizer" mapstructure:"tokenizer"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// TokenizerConfig controls word normalization
type TokenizerConfig struct {
	// Abbreviations are kept as words verbatim and never end a sentence.
	// An empty list disables them; leaving the key out keeps the default.
	Abbreviations []string `yaml:"abbreviations" mapstructure:"abbreviations"`
}

// HTTPConfig controls how remote and local sources are read
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig controls caching of fetched remote documents
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-host request rates for remote sources
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format        string `yaml:"format" mapstructure:"format"` // text, json, yaml, markdown
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
}

// LoggingConfig controls diagnostic logging on stderr
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultAbbreviations are the tokens treated as words rather than sentence ends
var DefaultAbbreviations = []string{"i.e."}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Tokenizer: TokenizerConfig{
			Abbreviations: append([]string(nil), DefaultAbbreviations...),
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Concordance/0.1 (+https://github.com/ppiankov/concordance)",
			MaxBodyBytes:  10_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Format:        "text",
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
