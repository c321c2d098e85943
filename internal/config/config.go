package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nova/internal/prompt"
	"nova/internal/provider"
)

// KnownProviders are the backends the CLI can build.
var KnownProviders = []string{"gemini", "openai", "ollama"}

type Config struct {
	AI           AIConfig           `yaml:"ai" toml:"ai"`
	Providers    ProvidersConfig    `yaml:"providers" toml:"providers"`
	Prompt       PromptConfig       `yaml:"prompt" toml:"prompt"`
	Conversation ConversationConfig `yaml:"conversation" toml:"conversation"`
}

type AIConfig struct {
	Platform        string   `yaml:"platform" toml:"platform"`
	FallbackOrder   []string `yaml:"fallback_order" toml:"fallback_order"`
	AvailabilityTTL string   `yaml:"availability_ttl" toml:"availability_ttl"` // e.g. "30s"
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key" toml:"api_key"`
	Model   string `yaml:"model" toml:"model"`
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

type ProvidersConfig struct {
	Gemini ProviderConfig `yaml:"gemini" toml:"gemini"`
	OpenAI ProviderConfig `yaml:"openai" toml:"openai"`
	Ollama ProviderConfig `yaml:"ollama" toml:"ollama"`
}

type PromptConfig struct {
	IncludeStructure bool    `yaml:"include_structure" toml:"include_structure"`
	IncludeHistory   bool    `yaml:"include_history" toml:"include_history"`
	ContextLines     int     `yaml:"context_lines" toml:"context_lines"`
	Temperature      float64 `yaml:"temperature" toml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens" toml:"max_tokens"`
	HistoryMessages  int     `yaml:"history_messages" toml:"history_messages"`
}

type ConversationConfig struct {
	// DBPath is the SQLite file for conversation history. Empty keeps
	// history in memory only.
	DBPath string `yaml:"db_path" toml:"db_path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Platform:        "gemini",
			FallbackOrder:   []string{"openai", "ollama"},
			AvailabilityTTL: "30s",
		},
		Prompt: PromptConfig{
			IncludeStructure: true,
			IncludeHistory:   true,
			ContextLines:     3,
			Temperature:      prompt.DefaultTemperature,
			MaxTokens:        prompt.DefaultMaxTokens,
			HistoryMessages:  10,
		},
	}
}

// LoadConfig reads path on top of the defaults and applies environment
// overrides. A missing file is not an error. Files ending in .toml are
// decoded as TOML, anything else as YAML.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Decode the file over the defaults
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyEnv() {
	if p := os.Getenv("NOVA_AI_PROVIDER"); p != "" {
		c.AI.Platform = p
	}
	if key := os.Getenv("NOVA_API_KEY"); key != "" {
		if pc := c.provider(c.AI.Platform); pc != nil {
			pc.APIKey = key
		}
	}
	if key := os.Getenv("NOVA_GEMINI_API_KEY"); key != "" {
		c.Providers.Gemini.APIKey = key
	}
	if key := os.Getenv("NOVA_OPENAI_API_KEY"); key != "" {
		c.Providers.OpenAI.APIKey = key
	}
	if u := os.Getenv("NOVA_OLLAMA_BASE_URL"); u != "" {
		c.Providers.Ollama.BaseURL = u
	}
}

func (c *Config) provider(name string) *ProviderConfig {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return &c.Providers.Gemini
	case "openai":
		return &c.Providers.OpenAI
	case "ollama":
		return &c.Providers.Ollama
	}
	return nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error
	if c.provider(c.AI.Platform) == nil {
		errs = append(errs, fmt.Errorf("unknown ai.platform %q", c.AI.Platform))
	}
	for _, name := range c.AI.FallbackOrder {
		if c.provider(name) == nil {
			errs = append(errs, fmt.Errorf("unknown provider %q in ai.fallback_order", name))
		}
	}
	if _, err := c.availabilityTTL(); err != nil {
		errs = append(errs, err)
	}
	if c.Prompt.Temperature < 0 || c.Prompt.Temperature > 2 {
		errs = append(errs, fmt.Errorf("prompt.temperature must be between 0 and 2, got %v", c.Prompt.Temperature))
	}
	if c.Prompt.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("prompt.max_tokens must not be negative, got %d", c.Prompt.MaxTokens))
	}
	if c.Prompt.ContextLines < 0 {
		errs = append(errs, fmt.Errorf("prompt.context_lines must not be negative, got %d", c.Prompt.ContextLines))
	}
	return errors.Join(errs...)
}

func (c *Config) availabilityTTL() (time.Duration, error) {
	if c.AI.AvailabilityTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.AI.AvailabilityTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid ai.availability_ttl %q: %w", c.AI.AvailabilityTTL, err)
	}
	return d, nil
}

// AvailabilityTTL is how long provider availability is cached. Zero means
// the manager default.
func (c *Config) AvailabilityTTL() time.Duration {
	d, _ := c.availabilityTTL()
	return d
}

// ProviderOptions returns factory options for every provider that can be
// built: hosted backends need an API key, Ollama is always included.
func (c *Config) ProviderOptions() []provider.Options {
	var out []provider.Options
	for _, name := range KnownProviders {
		pc := c.provider(name)
		if name != "ollama" && strings.TrimSpace(pc.APIKey) == "" {
			continue
		}
		out = append(out, provider.Options{
			Provider: name,
			APIKey:   pc.APIKey,
			Model:    pc.Model,
			BaseURL:  pc.BaseURL,
		})
	}
	return out
}

// ManagerOptions wires platform, fallback order and cache TTL.
func (c *Config) ManagerOptions() []provider.ManagerOption {
	return []provider.ManagerOption{
		provider.WithPlatform(c.AI.Platform),
		provider.WithFallbackOrder(slices.Clone(c.AI.FallbackOrder)...),
		provider.WithAvailabilityTTL(c.AvailabilityTTL()),
	}
}

func (c *Config) PromptOptions() prompt.Options {
	return prompt.Options{
		IncludeStructure: c.Prompt.IncludeStructure,
		IncludeHistory:   c.Prompt.IncludeHistory,
		Temperature:      c.Prompt.Temperature,
		MaxTokens:        c.Prompt.MaxTokens,
	}
}
