package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// minCacheBytes matches the smallest template cache the tools package builds.
const minCacheBytes = 100

type Config struct {
	App          AppConfig                 `json:"app" yaml:"app"`
	Gateways     map[string]GatewayConfig  `json:"gateways" yaml:"gateways"`
	Providers    map[string]ProviderConfig `json:"providers" yaml:"providers"`
	Database     DatabaseConfig            `json:"database" yaml:"database"`
	Orchestrator OrchestratorConfig        `json:"orchestrator" yaml:"orchestrator"`
	Cache        CacheConfig               `json:"cache" yaml:"cache"`
	Logging      LoggingConfig             `json:"logging" yaml:"logging"`
	Policy       PolicyConfig              `json:"policy" yaml:"policy"`
}

type AppConfig struct {
	Name       string `json:"name" yaml:"name"`
	PromptsDir string `json:"prompts_dir" yaml:"prompts_dir"`
}

type GatewayConfig struct {
	Token   string `json:"token" yaml:"token"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Defaults are applied to onboarding answers that leave a field blank.
type Defaults struct {
	Category string `json:"category" yaml:"category"`
	State    string `json:"state" yaml:"state"`
	Stage    string `json:"stage" yaml:"stage"`
}

type OrchestratorConfig struct {
	MaxTemplatesInPrompt int      `json:"max_templates_in_prompt" yaml:"max_templates_in_prompt"`
	MaxToolRounds        int      `json:"max_tool_rounds" yaml:"max_tool_rounds"`
	RunTimeoutSeconds    int      `json:"run_timeout_seconds" yaml:"run_timeout_seconds"`
	Defaults             Defaults `json:"defaults" yaml:"defaults"`
}

type CacheConfig struct {
	TemplateTTLSeconds int   `json:"template_ttl_seconds" yaml:"template_ttl_seconds"`
	MaxBytes           int64 `json:"max_bytes" yaml:"max_bytes"`
}

type LoggingConfig struct {
	LLMLogPath string `json:"llm_log_path" yaml:"llm_log_path"`
	MaxBytes   int64  `json:"max_bytes" yaml:"max_bytes"`
}

// PolicyConfig restricts which tools the model may call on its own.
type PolicyConfig struct {
	DeniedTools     []string `json:"denied_tools" yaml:"denied_tools"`
	DeniedArguments []string `json:"denied_arguments" yaml:"denied_arguments"`
}

// Default returns a configuration with every optional field populated.
func Default() *Config {
	return &Config{
		App:       AppConfig{Name: "launchpad"},
		Gateways:  map[string]GatewayConfig{},
		Providers: map[string]ProviderConfig{},
		Database:  DatabaseConfig{Path: "launchpad.db"},
		Orchestrator: OrchestratorConfig{
			MaxTemplatesInPrompt: 50,
			MaxToolRounds:        4,
			RunTimeoutSeconds:    120,
			Defaults: Defaults{
				Category: "service",
				State:    "CA",
				Stage:    "idea",
			},
		},
		Cache: CacheConfig{
			TemplateTTLSeconds: 300,
			MaxBytes:           8 << 20,
		},
		Logging: LoggingConfig{
			LLMLogPath: filepath.Join("logs", "llm.jsonl"),
			MaxBytes:   10 * 1024 * 1024,
		},
		Policy: PolicyConfig{
			DeniedTools: []string{
				"create_business_from_onboarding",
				"bulk_create_tasks",
				"store_business_plan",
			},
		},
	}
}

// Load reads a YAML (.yaml/.yml) or JSON config file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills empty provider keys from LAUNCHPAD_<PROVIDER>_API_KEY.
func (c *Config) applyEnv() {
	for name, p := range c.Providers {
		if p.APIKey != "" {
			continue
		}
		key := "LAUNCHPAD_" + strings.ToUpper(name) + "_API_KEY"
		if v := os.Getenv(key); v != "" {
			p.APIKey = v
			c.Providers[name] = p
		}
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	o := &c.Orchestrator
	if o.MaxTemplatesInPrompt <= 0 {
		o.MaxTemplatesInPrompt = d.Orchestrator.MaxTemplatesInPrompt
	}
	if o.MaxToolRounds <= 0 {
		o.MaxToolRounds = d.Orchestrator.MaxToolRounds
	}
	if o.RunTimeoutSeconds <= 0 {
		o.RunTimeoutSeconds = d.Orchestrator.RunTimeoutSeconds
	}
	if o.Defaults.Category == "" {
		o.Defaults.Category = d.Orchestrator.Defaults.Category
	}
	if o.Defaults.State == "" {
		o.Defaults.State = d.Orchestrator.Defaults.State
	}
	if o.Defaults.Stage == "" {
		o.Defaults.Stage = d.Orchestrator.Defaults.Stage
	}
	if c.Cache.MaxBytes <= 0 {
		c.Cache.MaxBytes = d.Cache.MaxBytes
	}
	if c.Logging.LLMLogPath == "" {
		c.Logging.LLMLogPath = d.Logging.LLMLogPath
	}
	if c.Logging.MaxBytes <= 0 {
		c.Logging.MaxBytes = d.Logging.MaxBytes
	}
}

// Validate reports configuration that cannot be used at runtime.
func (c *Config) Validate() error {
	for name, p := range c.Providers {
		if p.Enabled && p.Model == "" {
			return fmt.Errorf("provider %q is enabled but has no model", name)
		}
	}
	if c.Cache.TemplateTTLSeconds < 0 {
		return fmt.Errorf("cache.template_ttl_seconds must not be negative")
	}
	if c.Cache.MaxBytes < minCacheBytes {
		return fmt.Errorf("cache.max_bytes must be at least %d, got %d", minCacheBytes, c.Cache.MaxBytes)
	}
	return nil
}

// GetDefaultProvider returns the first enabled provider, by name order so the
// choice is stable across runs.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p := c.Providers[name]; p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
