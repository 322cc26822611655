package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIsolated(t *testing.T) *Config {
	t.Helper()
	// Run from an empty directory so no stray config.yaml is picked up.
	chdirForTest(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadIsolated(t)

	assert.Equal(t, "http", cfg.Classifier.Provider)
	assert.Equal(t, DefaultEndpoint, cfg.Classifier.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, map[string]int{"checks": 1}, cfg.Worker.Queues)
	assert.Equal(t, 1000, cfg.Server.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdleTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PODSAFE_CLASSIFIER_ENDPOINT", "http://localhost:9999/classify")
	t.Setenv("PODSAFE_CLASSIFIER_TIMEOUT", "3s")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := loadIsolated(t)

	assert.Equal(t, "http://localhost:9999/classify", cfg.Classifier.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "sk-test", cfg.Classifier.OpenaiApiKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("HOME", t.TempDir())
	yaml := []byte("classifier:\n  provider: gemini\n  google_api_key: g-key\n  model: gemini-1.5-flash\ndatabase:\n  driver: postgres\n  dsn: postgres://localhost/podsafe\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Classifier.Provider)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"Relative endpoint", func(c *Config) { c.Classifier.Endpoint = "/classify" }, "classifier.endpoint"},
		{"Unknown provider", func(c *Config) { c.Classifier.Provider = "magic" }, "unknown classifier.provider"},
		{"OpenAI without key", func(c *Config) { c.Classifier.Provider = "openai" }, "openai_api_key"},
		{"Gemini without key", func(c *Config) { c.Classifier.Provider = "gemini" }, "google_api_key"},
		{"Zero timeout", func(c *Config) { c.Classifier.Timeout = 0 }, "timeout"},
		{"Unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"Empty DSN", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"Redis without queues", func(c *Config) {
			c.Redis.Address = "localhost:6379"
			c.Worker.Queues = nil
		}, "worker.queues"},
		{"Negative pricing", func(c *Config) {
			c.Pricing = map[string]map[string]PricingInfo{"openai": {"m": {InputPerToken: -1}}}
		}, "negative token cost"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadIsolated(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLoadPromptContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classify.txt")
	require.NoError(t, os.WriteFile(path, []byte("Keywords: {{KEYWORDS}}"), 0o600))

	content, err := LoadPromptContent(path, "classify.txt")
	require.NoError(t, err)
	assert.Equal(t, "Keywords: {{KEYWORDS}}", content)

	t.Setenv("HOME", t.TempDir())
	_, err = LoadPromptContent("", "missing.txt")
	assert.Error(t, err)
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores the previous one when the test finishes.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
