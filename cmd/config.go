package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/server"
)

type Config struct {
	Server       server.Config   `mapstructure:"server"`
	QuestionBank string          `mapstructure:"question-bank"`
	Database     string          `mapstructure:"database"`
	Interview    InterviewConfig `mapstructure:"interview"`
	AI           AIConfig        `mapstructure:"ai"`
}

type InterviewConfig struct {
	QuestionCount int           `mapstructure:"question-count"`
	Role          string        `mapstructure:"role"`
	SessionTTL    time.Duration `mapstructure:"session-ttl"`
	CompletedTTL  time.Duration `mapstructure:"completed-ttl"`
}

type AIConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	Provider  string          `mapstructure:"provider"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	BaseURL      string `mapstructure:"base-url"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type AnthropicConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// setDefaults registers every key so that environment variables are picked
// up by Unmarshal even when no config file mentions them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read-timeout", 10*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("server.shutdown-timeout", 15*time.Second)

	v.SetDefault("question-bank", "")
	v.SetDefault("database", "")

	v.SetDefault("interview.question-count", interview.DefaultQuestionCount)
	v.SetDefault("interview.role", bank.RoleGeneral)
	v.SetDefault("interview.session-ttl", interview.DefaultSessionTTL)
	v.SetDefault("interview.completed-ttl", interview.DefaultCompletedTTL)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", ai.ProviderGemini)
	v.SetDefault("ai.timeout", 20*time.Second)

	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)

	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ai.openai.max-retries", 3)
	v.SetDefault("ai.openai.max-log-length", 200)

	v.SetDefault("ai.anthropic.api-key", "")
	v.SetDefault("ai.anthropic.api-key-file", "")
	v.SetDefault("ai.anthropic.model", "claude-haiku-4-5")
	v.SetDefault("ai.anthropic.max-retries", 3)
	v.SetDefault("ai.anthropic.max-log-length", 200)
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case "":
		c.AI.Provider = ai.ProviderGemini
	case ai.ProviderGemini, ai.ProviderOpenAI, ai.ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported ai provider: %s", c.AI.Provider)
	}
	if c.Interview.QuestionCount < 0 {
		return fmt.Errorf("interview.question-count must not be negative, got %d", c.Interview.QuestionCount)
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must not be negative, got %s", c.AI.Timeout)
	}
	return nil
}
