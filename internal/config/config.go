package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the askgate service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Web       WebConfig       `yaml:"web"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LLMConfig holds the chat-completion provider settings used for the
// classify and generate capabilities.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EmbeddingConfig holds query vectorization settings for the corpus backend.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // 0 disables the embedding cache
}

// CorpusConfig holds the corpus backend settings. An empty addrs list means
// the backend is not configured and stays skipped for the process lifetime.
type CorpusConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	Limit            int      `yaml:"limit"`
}

// WebConfig holds the web-search backend settings. An empty api_key means
// the backend is not configured and stays skipped for the process lifetime.
type WebConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
	Depth      string `yaml:"depth"` // basic, advanced
}

// RetrievalConfig holds orchestration settings.
type RetrievalConfig struct {
	AllowedDomains []string       `yaml:"allowed_domains"`
	PrimaryDomain  string         `yaml:"primary_domain"`
	EvidenceLimit  int            `yaml:"evidence_limit"`
	Topics         []string       `yaml:"topics"`
	Timeouts       TimeoutsConfig `yaml:"timeouts"`
}

// TimeoutsConfig bounds every external call made during one orchestration.
type TimeoutsConfig struct {
	ClassifySec int `yaml:"classify_sec"`
	PlanSec     int `yaml:"plan_sec"`
	SearchSec   int `yaml:"search_sec"`
	GenerateSec int `yaml:"generate_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// CorpusEnabled reports whether the corpus backend is configured.
func (c *Config) CorpusEnabled() bool { return len(c.Corpus.Addrs) > 0 }

// WebEnabled reports whether the web-search backend is configured.
func (c *Config) WebEnabled() bool { return c.Web.APIKey != "" }

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.ReadinessTimeout <= 0 {
		c.Corpus.ReadinessTimeout = 10
	}
	if c.Corpus.Index == "" {
		c.Corpus.Index = "askgate:docs"
	}
	if c.Corpus.Limit <= 0 {
		c.Corpus.Limit = 6
	}
	if c.Web.BaseURL == "" {
		c.Web.BaseURL = "https://api.tavily.com"
	}
	if c.Web.MaxResults <= 0 {
		c.Web.MaxResults = 6
	}
	if c.Web.Depth == "" {
		c.Web.Depth = "basic"
	}
	if c.Retrieval.EvidenceLimit <= 0 {
		c.Retrieval.EvidenceLimit = 6
	}
	if c.Retrieval.Timeouts.ClassifySec <= 0 {
		c.Retrieval.Timeouts.ClassifySec = 10
	}
	if c.Retrieval.Timeouts.PlanSec <= 0 {
		c.Retrieval.Timeouts.PlanSec = 10
	}
	if c.Retrieval.Timeouts.SearchSec <= 0 {
		c.Retrieval.Timeouts.SearchSec = 15
	}
	if c.Retrieval.Timeouts.GenerateSec <= 0 {
		c.Retrieval.Timeouts.GenerateSec = 45
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.CorpusEnabled() && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when corpus backend is configured")
	}
	if c.WebEnabled() && c.Retrieval.PrimaryDomain == "" {
		return fmt.Errorf("retrieval.primary_domain is required when web backend is configured")
	}
	if c.WebEnabled() && len(c.Retrieval.AllowedDomains) == 0 {
		return fmt.Errorf("retrieval.allowed_domains is required when web backend is configured")
	}
	switch c.Web.Depth {
	case "", "basic", "advanced":
		// ok
	default:
		return fmt.Errorf("web.depth must be \"basic\" or \"advanced\", got %q", c.Web.Depth)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
