package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	Classifier struct {
		Provider       string        `mapstructure:"provider"` // "http", "openai" or "gemini"
		Endpoint       string        `mapstructure:"endpoint"`
		Timeout        time.Duration `mapstructure:"timeout"`
		Model          string        `mapstructure:"model"`
		PromptTemplate string        `mapstructure:"prompt_template"` // Path to prompt template file
		OpenaiApiKey   string        `mapstructure:"openai_api_key"`
		GoogleApiKey   string        `mapstructure:"google_api_key"`
	} `mapstructure:"classifier"`

	Extraction struct {
		StripHTML bool `mapstructure:"strip_html"`
	} `mapstructure:"extraction"`

	Database struct {
		Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Server struct {
		AllowedOrigins []string      `mapstructure:"allowed_origins"`
		MaxSessions    int           `mapstructure:"max_sessions"`
		SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"`
	} `mapstructure:"server"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

// DefaultEndpoint is the public classification service.
const DefaultEndpoint = "https://api-podcast.tawasol.tn/classify-podcast"

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("classifier.provider", "http")
	v.SetDefault("classifier.endpoint", DefaultEndpoint)
	v.SetDefault("classifier.timeout", 15*time.Second)
	v.SetDefault("classifier.model", "gpt-4o-mini")
	v.SetDefault("extraction.strip_html", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "podsafe.db")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.session_idle_ttl", 30*time.Minute)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queues", map[string]int{"checks": 1})
}

func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load reads config.yaml (if any), environment variables and defaults into a Config.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/podsafe")

	// PODSAFE_CLASSIFIER_ENDPOINT -> classifier.endpoint
	v.SetEnvPrefix("PODSAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known provider keys are honoured without the prefix.
	_ = v.BindEnv("classifier.openai_api_key", "PODSAFE_CLASSIFIER_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("classifier.google_api_key", "PODSAFE_CLASSIFIER_GOOGLE_API_KEY", "GEMINI_API_KEY")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &config, nil
}
