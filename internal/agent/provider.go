package agent

import (
	"fmt"

	"github.com/rahul/launchpad/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// ModelFactory builds a model for a named provider.
type ModelFactory func(provider string, cfg config.ProviderConfig) (llms.Model, error)

// NewModel builds a langchaingo model for one of the supported providers.
func NewModel(provider string, cfg config.ProviderConfig) (llms.Model, error) {
	switch provider {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		baseURL := cfg.BaseURL
		if baseURL == "" && provider == "openrouter" {
			baseURL = openRouterBaseURL
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("provider %s not supported", provider)
	}
}

// Selector picks the inference client for a run: the default one, or a
// one-off client when the caller overrides provider, model or key.
type Selector struct {
	Default         *LLMClient
	DefaultProvider string
	Providers       map[string]config.ProviderConfig
	NewModel        ModelFactory
}

func NewSelector(def *LLMClient, defaultProvider string, providers map[string]config.ProviderConfig) *Selector {
	return &Selector{
		Default:         def,
		DefaultProvider: defaultProvider,
		Providers:       providers,
		NewModel:        NewModel,
	}
}

// For returns the client for the given overrides. Empty overrides select the
// default client.
func (s *Selector) For(provider, model, apiKey string) (Client, error) {
	if provider == "" && model == "" && apiKey == "" {
		if s.Default == nil {
			return nil, fmt.Errorf("no default provider configured")
		}
		return s.Default, nil
	}

	if provider == "" {
		provider = s.DefaultProvider
	}
	cfg, ok := s.Providers[provider]
	if !ok && provider == "" {
		return nil, fmt.Errorf("no provider selected")
	}
	if model != "" {
		cfg.Model = model
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %s has no model", provider)
	}

	m, err := s.NewModel(provider, cfg)
	if err != nil {
		return nil, err
	}
	base := s.Default
	if base == nil {
		base = &LLMClient{MaxRounds: 1}
	}
	return base.WithModel(m, cfg.Model), nil
}
