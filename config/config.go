package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for newsdesk
type Config struct {
	General   GeneralConfig    `mapstructure:"general"`
	Server    ServerConfig     `mapstructure:"server"`
	LLM       LLMConfig        `mapstructure:"llm"`
	Agent     AgentConfig      `mapstructure:"agent"`
	Sources   SourcesConfig    `mapstructure:"sources"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Highlight HighlightConfig  `mapstructure:"highlight"`
	Schedules []ScheduleConfig `mapstructure:"schedules"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Normalize applies defaults for unset server values.
func (s ServerConfig) Normalize() ServerConfig {
	if strings.TrimSpace(s.Address) == "" {
		s.Address = ":8080"
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 5 * time.Minute
	}
	return s
}

// LLMConfig selects the model provider driving the agent loop
type LLMConfig struct {
	Type        string        `mapstructure:"type"` // openai or anthropic
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Normalize fills provider specific defaults.
func (l LLMConfig) Normalize() LLMConfig {
	l.Type = strings.ToLower(strings.TrimSpace(l.Type))
	if l.Type == "" {
		l.Type = "openai"
	}
	if strings.TrimSpace(l.BaseURL) == "" {
		switch l.Type {
		case "anthropic":
			l.BaseURL = "https://api.anthropic.com/v1"
		default:
			l.BaseURL = "https://api.openai.com/v1"
		}
	}
	if strings.TrimSpace(l.Model) == "" {
		switch l.Type {
		case "anthropic":
			l.Model = "claude-3-5-sonnet-latest"
		default:
			l.Model = "gpt-4o-mini"
		}
	}
	if l.MaxTokens <= 0 {
		l.MaxTokens = 2048
	}
	if l.MaxRetries < 0 {
		l.MaxRetries = 0
	}
	if l.Timeout <= 0 {
		l.Timeout = 2 * time.Minute
	}
	return l
}

func (l LLMConfig) Validate() error {
	switch l.Type {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.type %q not supported", l.Type)
	}
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key required")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	return nil
}

// AgentConfig bounds the reason/act/observe loop
type AgentConfig struct {
	MaxSteps       int           `mapstructure:"max_steps"`
	ToolRetries    int           `mapstructure:"tool_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	StopSequences  []string      `mapstructure:"stop_sequences"`
	SearchResults  int           `mapstructure:"search_results"`
	FetchEnabled   bool          `mapstructure:"fetch_enabled"`
	FetchMaxChars  int           `mapstructure:"fetch_max_chars"`
	FetchRenderer  string        `mapstructure:"fetch_renderer"` // http or chromedp
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	DefaultProfile string        `mapstructure:"default_profile"`
}

// Normalize applies defaults for unset agent values.
func (a AgentConfig) Normalize() AgentConfig {
	if a.MaxSteps <= 0 {
		a.MaxSteps = 15
	}
	if a.ToolRetries < 0 {
		a.ToolRetries = 0
	}
	if a.RetryBackoff <= 0 {
		a.RetryBackoff = 500 * time.Millisecond
	}
	if len(a.StopSequences) == 0 {
		a.StopSequences = []string{"\n<Observation>"}
	}
	if a.SearchResults <= 0 {
		a.SearchResults = 3
	}
	if a.FetchMaxChars <= 0 {
		a.FetchMaxChars = 4000
	}
	a.FetchRenderer = strings.ToLower(strings.TrimSpace(a.FetchRenderer))
	if a.FetchRenderer == "" {
		a.FetchRenderer = "http"
	}
	if a.FetchTimeout <= 0 {
		a.FetchTimeout = 15 * time.Second
	}
	a.DefaultProfile = strings.ToLower(strings.TrimSpace(a.DefaultProfile))
	if a.DefaultProfile == "" {
		a.DefaultProfile = "writing"
	}
	return a
}

func (a AgentConfig) Validate() error {
	if a.MaxSteps > 100 {
		return fmt.Errorf("agent.max_steps must be <= 100")
	}
	if a.ToolRetries > 10 {
		return fmt.Errorf("agent.tool_retries must be <= 10")
	}
	switch a.DefaultProfile {
	case "writing", "idea":
	default:
		return fmt.Errorf("agent.default_profile %q not supported", a.DefaultProfile)
	}
	switch a.FetchRenderer {
	case "http", "chromedp":
	default:
		return fmt.Errorf("agent.fetch_renderer %q not supported", a.FetchRenderer)
	}
	return nil
}

// SourcesConfig contains search source configurations
type SourcesConfig struct {
	WebSearch WebSearchConfig    `mapstructure:"web_search"`
	Policy    SourcePolicyConfig `mapstructure:"policy"`
}

// WebSearchConfig contains web search settings
type WebSearchConfig struct {
	Provider      string        `mapstructure:"provider"` // brave or serper
	BraveAPIKey   string        `mapstructure:"brave_api_key"`
	SerperAPIKey  string        `mapstructure:"serper_api_key"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// Normalize picks a provider from the configured keys when none is set.
func (w WebSearchConfig) Normalize() WebSearchConfig {
	w.Provider = strings.ToLower(strings.TrimSpace(w.Provider))
	if w.Provider == "" {
		if w.SerperAPIKey != "" && w.BraveAPIKey == "" {
			w.Provider = "serper"
		} else {
			w.Provider = "brave"
		}
	}
	if w.RatePerSecond <= 0 {
		w.RatePerSecond = 1
	}
	if w.Timeout <= 0 {
		w.Timeout = 20 * time.Second
	}
	if w.CacheTTL < 0 {
		w.CacheTTL = 0
	}
	return w
}

func (w WebSearchConfig) Validate() error {
	switch w.Provider {
	case "brave":
		if strings.TrimSpace(w.BraveAPIKey) == "" {
			return fmt.Errorf("sources.web_search.brave_api_key required for provider brave")
		}
	case "serper":
		if strings.TrimSpace(w.SerperAPIKey) == "" {
			return fmt.Errorf("sources.web_search.serper_api_key required for provider serper")
		}
	default:
		return fmt.Errorf("sources.web_search.provider %q not supported", w.Provider)
	}
	return nil
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Host) != "" }

// Addr is host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

func (r RedisConfig) Validate() error {
	if !r.Enabled() {
		return nil
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether postgres persistence is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.URL) != "" || strings.TrimSpace(p.Host) != ""
}

// DSN returns the connection string, preferring URL when set.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, ssl)
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" || !p.Enabled() {
		return nil
	}
	if strings.TrimSpace(p.Port) == "" {
		return fmt.Errorf("storage.postgres.port required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// ArchiveConfig locates the full-text archive of finished reports. An empty
// path keeps the archive in memory.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsPort  int    `mapstructure:"metrics_port"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

func (t TelemetryConfig) Normalize() TelemetryConfig {
	if strings.TrimSpace(t.ServiceName) == "" {
		t.ServiceName = "newsdesk"
	}
	return t
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port must be > 0 when telemetry is enabled")
	}
	return nil
}

// LoadConfig loads config from file. An empty path searches the usual
// locations for config.json.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.SetDefault("general.log_level", "info")
	// registered so NEWSDESK_* overrides apply without a file entry
	for _, key := range []string{"llm.api_key", "llm.model", "server.jwt_secret", "sources.web_search.brave_api_key", "sources.web_search.serper_api_key", "storage.postgres.url"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("agent.tool_retries", 2)
	v.SetDefault("agent.fetch_enabled", true)
	v.SetDefault("sources.web_search.cache_ttl", "6h")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
		v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize applies defaults to every section in place.
func (c *Config) Normalize() {
	c.Server = c.Server.Normalize()
	c.LLM = c.LLM.Normalize()
	c.Agent = c.Agent.Normalize()
	c.Sources.WebSearch = c.Sources.WebSearch.Normalize()
	c.Sources.Policy = c.Sources.Policy.Normalize()
	c.Telemetry = c.Telemetry.Normalize()
	c.Highlight = c.Highlight.Normalize()
	for i := range c.Schedules {
		c.Schedules[i] = c.Schedules[i].Normalize(c.Agent.DefaultProfile)
	}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	checks := []func() error{
		c.LLM.Validate,
		c.Agent.Validate,
		c.Sources.WebSearch.Validate,
		c.Sources.Policy.Validate,
		c.Storage.Redis.Validate,
		c.Storage.Postgres.Validate,
		c.Telemetry.Validate,
		c.Highlight.Validate,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	for i, s := range c.Schedules {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("schedules[%d]: %w", i, err)
		}
	}
	return nil
}
