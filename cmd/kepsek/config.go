package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/services"
	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned when the selected provider needs an API key and none is configured.
var ErrMissingCredential = errors.New("API key is not set")

type llmConfig interface {
	provider() string
	gateway(logger *slog.Logger) (services.Completer, error)
	// credentialEnv names the environment variable that holds the provider's API key, empty if the
	// provider needs none.
	credentialEnv() string
}

// BaseLLMConfig contains the common fields for all LLM configurations.
type BaseLLMConfig struct {
	Provider string `yaml:"provider"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	BaseURL       string `yaml:"baseURL"`
}

type openRouterConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	Endpoint      string `yaml:"endpoint"`
}

type anthropicConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	Endpoint      string `yaml:"endpoint"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

type defaultsConfig struct {
	Language    string   `yaml:"language" env:"KEPSEK_LANGUAGE"`
	Model       string   `yaml:"model" env:"KEPSEK_MODEL"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"maxTokens" env:"KEPSEK_MAX_TOKENS"`
}

type config struct {
	Port        string         `yaml:"port" env:"KEPSEK_PORT"`
	LogLevel    string         `yaml:"logLevel" env:"KEPSEK_LOG_LEVEL"`
	DataDir     string         `yaml:"dataDir" env:"KEPSEK_DATA_DIR"`
	MaxSessions int            `yaml:"maxSessions" env:"KEPSEK_MAX_SESSIONS"`
	Models      []string       `yaml:"models" env:"KEPSEK_MODELS" envSeparator:","`
	Defaults    defaultsConfig `yaml:"defaults"`

	llm llmConfig
}

const (
	defaultPort        = "8501"
	defaultMaxSessions = 256
	defaultOllamaHost  = "http://localhost:11434"
)

var defaultModels = []string{"gpt-4", "gpt-3.5-turbo"}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port        string         `yaml:"port"`
		LogLevel    string         `yaml:"logLevel"`
		DataDir     string         `yaml:"dataDir"`
		MaxSessions int            `yaml:"maxSessions"`
		Models      []string       `yaml:"models"`
		Defaults    defaultsConfig `yaml:"defaults"`
		LLM         map[string]any `yaml:"llm"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	c.Port = rawConfig.Port
	c.LogLevel = rawConfig.LogLevel
	c.DataDir = rawConfig.DataDir
	c.MaxSessions = rawConfig.MaxSessions
	c.Models = rawConfig.Models
	c.Defaults = rawConfig.Defaults

	if rawConfig.LLM == nil {
		return nil
	}

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "openai":
		llm = &openAIConfig{}
	case "openrouter":
		llm = &openRouterConfig{}
	case "anthropic":
		llm = &anthropicConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.llm = llm
	return nil
}

// loadConfig reads the YAML file at path, then lets the environment override it and fills in defaults.
// A missing file is only an error when required is set.
func loadConfig(path string, required bool) (config, error) {
	var cfg config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("error reading environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *config) applyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = defaultMaxSessions
	}
	if len(c.Models) == 0 {
		c.Models = defaultModels
	}
	if c.llm == nil {
		c.llm = &openAIConfig{BaseLLMConfig: BaseLLMConfig{Provider: "openai"}}
	}
}

// settings returns the settings new sessions start with.
func (c config) settings() (models.Settings, error) {
	s := models.DefaultSettings()
	if c.Defaults.Language != "" {
		lang, err := models.ParseLanguage(c.Defaults.Language)
		if err != nil {
			return models.Settings{}, err
		}
		s.Language = lang
	}
	if c.Defaults.Model != "" {
		s.Model = c.Defaults.Model
	}
	if c.Defaults.Temperature != nil {
		s.Temperature = *c.Defaults.Temperature
	}
	if c.Defaults.MaxTokens != 0 {
		s.MaxTokens = c.Defaults.MaxTokens
	}
	if err := s.Validate(); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

func (c config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// disabledReason is the warning shown on the page when the gateway could not be built because of a
// missing credential.
func disabledReason(llm llmConfig) string {
	return fmt.Sprintf("%s belum disetel pada environment. Set sebelum menggunakan Asisten AI.", llm.credentialEnv())
}

func (o openAIConfig) provider() string      { return "openai" }
func (o openAIConfig) credentialEnv() string { return "OPENAI_API_KEY" }

func (o openAIConfig) gateway(logger *slog.Logger) (services.Completer, error) {
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	return services.NewOpenAI(apiKey, o.BaseURL, logger), nil
}

func (o openRouterConfig) provider() string      { return "openrouter" }
func (o openRouterConfig) credentialEnv() string { return "OPENROUTER_API_KEY" }

func (o openRouterConfig) gateway(logger *slog.Logger) (services.Completer, error) {
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	return services.NewOpenRouter(apiKey, o.Endpoint, logger), nil
}

func (a anthropicConfig) provider() string      { return "anthropic" }
func (a anthropicConfig) credentialEnv() string { return "ANTHROPIC_API_KEY" }

func (a anthropicConfig) gateway(logger *slog.Logger) (services.Completer, error) {
	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	return services.NewAnthropic(apiKey, a.Endpoint, logger), nil
}

func (o ollamaConfig) provider() string      { return "ollama" }
func (o ollamaConfig) credentialEnv() string { return "" }

func (o ollamaConfig) gateway(logger *slog.Logger) (services.Completer, error) {
	host := o.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultOllamaHost
	}
	ollama, err := services.NewOllama(host, logger)
	if err != nil {
		return nil, err
	}
	return ollama, nil
}
