package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that the settings needed by the configured providers are present.
func (c *Config) Validate() error {
	switch c.Classifier.Provider {
	case "http":
		u, err := url.Parse(c.Classifier.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("classifier.endpoint must be an absolute http(s) URL, got %q", c.Classifier.Endpoint)
		}
	case "openai":
		if c.Classifier.OpenaiApiKey == "" {
			return errors.New("classifier.openai_api_key is required when classifier.provider is openai")
		}
		if c.Classifier.Model == "" {
			return errors.New("classifier.model is required when classifier.provider is openai")
		}
	case "gemini":
		if c.Classifier.GoogleApiKey == "" {
			return errors.New("classifier.google_api_key is required when classifier.provider is gemini")
		}
		if c.Classifier.Model == "" {
			return errors.New("classifier.model is required when classifier.provider is gemini")
		}
	default:
		return fmt.Errorf("unknown classifier.provider %q (expected http, openai or gemini)", c.Classifier.Provider)
	}

	if c.Classifier.Timeout <= 0 {
		return errors.New("classifier.timeout must be positive")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database.driver %q (expected sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	// Worker config only matters when a queue is configured.
	if c.Redis.Address != "" {
		if c.Worker.Concurrency <= 0 {
			return errors.New("worker.concurrency must be a positive integer")
		}
		if len(c.Worker.Queues) == 0 {
			return errors.New("worker.queues must define at least one queue")
		}
		for name, priority := range c.Worker.Queues {
			if name == "" {
				return errors.New("worker.queues contains an empty queue name")
			}
			if priority <= 0 {
				return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
			}
		}
	}

	for provider, models := range c.Pricing {
		for model, price := range models {
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}
	return nil
}
