package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when a secret is not set in the config file
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvEnergyAPIKey = "ENERGY_API_KEY"
)

// Provider names accepted by the ai.provider setting
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds the application configuration
type Config struct {
	AI            AIConfig           `yaml:"ai"`
	EnergyAPI     EnergyAPIConfig    `yaml:"energy_api,omitempty"`
	MQTT          MQTTConfig         `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig           `yaml:"home_assistant,omitempty"`
	Redis         RedisConfig        `yaml:"redis,omitempty"`
	Connectivity  ConnectivityConfig `yaml:"connectivity,omitempty"`
	Server        ServerConfig       `yaml:"server,omitempty"`
	Watch         WatchConfig        `yaml:"watch,omitempty"`
	DaysToFetch   int                `yaml:"days_to_fetch,omitempty"` // fallback: 7
	Rate          float64            `yaml:"rate,omitempty"`          // Cost per kWh
}

// AIConfig selects and configures the generative text/vision provider
type AIConfig struct {
	Provider       string       `yaml:"provider,omitempty"`        // "gemini" (default) or "openai"
	TimeoutSeconds int          `yaml:"timeout_seconds,omitempty"` // 0 = default, -1 = no timeout
	Gemini         GeminiConfig `yaml:"gemini,omitempty"`
	OpenAI         OpenAIConfig `yaml:"openai,omitempty"`
}

// GeminiConfig holds generateContent API settings
type GeminiConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`     // e.g. "https://generativelanguage.googleapis.com/v1"
	Model       string `yaml:"model,omitempty"`        // e.g. "gemini-1.5-flash"
	VisionModel string `yaml:"vision_model,omitempty"` // used when a request carries an image
}

// OpenAIConfig holds chat completions API settings
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// EnergyAPIConfig points at a remote energy data API. Empty URL means mock data.
type EnergyAPIConfig struct {
	URL            string `yaml:"url,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://yourdomain.local:5050"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.envirolink_daily_energy"
}

// RedisConfig enables caching of generated insights
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr,omitempty"`
	Password   string `yaml:"password,omitempty"`
	DB         int    `yaml:"db,omitempty"`
	TTLMinutes int    `yaml:"ttl_minutes,omitempty"`
}

// ConnectivityConfig controls the reachability check
type ConnectivityConfig struct {
	URL             string `yaml:"url,omitempty"`
	TimeoutSeconds  int    `yaml:"timeout_seconds,omitempty"`
	IntervalSeconds int    `yaml:"interval_seconds,omitempty"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// WatchConfig controls real-time polling
type WatchConfig struct {
	IntervalSeconds int     `yaml:"interval_seconds,omitempty"`
	AlertThreshold  float64 `yaml:"alert_threshold,omitempty"` // kWh per reading
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetDaysToFetch returns the number of days to fetch with a default of 7, capped at 30
func (c *Config) GetDaysToFetch() int {
	switch {
	case c.DaysToFetch <= 0:
		return 7
	case c.DaysToFetch > 30:
		return 30
	default:
		return c.DaysToFetch
	}
}

// GetProvider returns the configured AI provider, defaulting to Gemini
func (c *Config) GetProvider() string {
	if c.AI.Provider == "" {
		return ProviderGemini
	}
	return c.AI.Provider
}

// GetAITimeout returns how long a single generation request may take.
// A negative setting disables the client-side deadline.
func (c *Config) GetAITimeout() time.Duration {
	switch {
	case c.AI.TimeoutSeconds < 0:
		return 0
	case c.AI.TimeoutSeconds == 0:
		return 30 * time.Second
	default:
		return time.Duration(c.AI.TimeoutSeconds) * time.Second
	}
}

// GetGeminiAPIKey returns the configured key, falling back to the environment
func (c *Config) GetGeminiAPIKey() string {
	if c.AI.Gemini.APIKey != "" {
		return c.AI.Gemini.APIKey
	}
	return os.Getenv(EnvGeminiAPIKey)
}

// GetGeminiBaseURL returns the Gemini API root
func (c *Config) GetGeminiBaseURL() string {
	if c.AI.Gemini.BaseURL != "" {
		return c.AI.Gemini.BaseURL
	}
	return "https://generativelanguage.googleapis.com/v1"
}

// GetGeminiModel returns the text model name
func (c *Config) GetGeminiModel() string {
	if c.AI.Gemini.Model != "" {
		return c.AI.Gemini.Model
	}
	return "gemini-1.5-flash"
}

// GetGeminiVisionModel returns the model used for image requests
func (c *Config) GetGeminiVisionModel() string {
	if c.AI.Gemini.VisionModel != "" {
		return c.AI.Gemini.VisionModel
	}
	return "gemini-1.5-pro-vision"
}

// GetOpenAIAPIKey returns the configured key, falling back to the environment
func (c *Config) GetOpenAIAPIKey() string {
	if c.AI.OpenAI.APIKey != "" {
		return c.AI.OpenAI.APIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// GetOpenAIModel returns the chat model name
func (c *Config) GetOpenAIModel() string {
	if c.AI.OpenAI.Model != "" {
		return c.AI.OpenAI.Model
	}
	return "gpt-4o-mini"
}

// GetEnergyAPIKey returns the energy data API key, falling back to the environment
func (c *Config) GetEnergyAPIKey() string {
	if c.EnergyAPI.APIKey != "" {
		return c.EnergyAPI.APIKey
	}
	return os.Getenv(EnvEnergyAPIKey)
}

// GetEnergyAPITimeout returns the data request timeout (default 8s)
func (c *Config) GetEnergyAPITimeout() time.Duration {
	if c.EnergyAPI.TimeoutSeconds > 0 {
		return time.Duration(c.EnergyAPI.TimeoutSeconds) * time.Second
	}
	return 8 * time.Second
}

// GetConnectivityURL returns the URL checked for reachability
func (c *Config) GetConnectivityURL() string {
	if c.Connectivity.URL != "" {
		return c.Connectivity.URL
	}
	return "https://www.google.com"
}

// GetConnectivityTimeout returns the reachability check timeout (default 5s)
func (c *Config) GetConnectivityTimeout() time.Duration {
	if c.Connectivity.TimeoutSeconds > 0 {
		return time.Duration(c.Connectivity.TimeoutSeconds) * time.Second
	}
	return 5 * time.Second
}

// GetConnectivityInterval returns how often reachability is re-checked (default 60s)
func (c *Config) GetConnectivityInterval() time.Duration {
	if c.Connectivity.IntervalSeconds > 0 {
		return time.Duration(c.Connectivity.IntervalSeconds) * time.Second
	}
	return 60 * time.Second
}

// GetWatchInterval returns the real-time polling interval (default 10s)
func (c *Config) GetWatchInterval() time.Duration {
	if c.Watch.IntervalSeconds > 0 {
		return time.Duration(c.Watch.IntervalSeconds) * time.Second
	}
	return 10 * time.Second
}

// GetAlertThreshold returns the per-reading kWh value that raises an alert (default 9)
func (c *Config) GetAlertThreshold() float64 {
	if c.Watch.AlertThreshold > 0 {
		return c.Watch.AlertThreshold
	}
	return 9
}

// GetCacheTTL returns how long cached insights live (default 1h)
func (c *Config) GetCacheTTL() time.Duration {
	if c.Redis.TTLMinutes > 0 {
		return time.Duration(c.Redis.TTLMinutes) * time.Minute
	}
	return time.Hour
}

// GetServerAddr returns the HTTP API listen address
func (c *Config) GetServerAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return ":8080"
}

// GetMQTTTopicPrefix returns the MQTT topic prefix
func (c *Config) GetMQTTTopicPrefix() string {
	if c.MQTT.TopicPrefix != "" {
		return c.MQTT.TopicPrefix
	}
	return "envirolink"
}
