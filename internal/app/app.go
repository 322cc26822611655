package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"podsafe/internal/config"
	"podsafe/internal/costtracker"
	"podsafe/internal/inputprocessor"
	"podsafe/internal/services"
	"podsafe/internal/store"
	"podsafe/internal/store/primary"
	"podsafe/internal/store/sqlite"
	"podsafe/pkg/classifier"

	"github.com/hibiken/asynq"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

type App struct {
	Config *config.Config

	Store       store.Store
	JobClient   store.JobClient // nil when no redis.address is configured
	CostTracker costtracker.CostTracker
	Classifier  classifier.Classifier
	Processor   inputprocessor.Processor

	// --- Initialized Services ---
	CheckService *services.CheckService
	Sessions     *services.SessionRegistry
}

// NewApp wires the store, classifier, job client and services described by cfg.
// A nil inputProc selects the default processor configured from cfg.
func NewApp(cfg *config.Config, inputProc inputprocessor.Processor) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg, CostTracker: costtracker.New()}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initClassifier(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initServices(inputProc)

	log.Debug("Application initialization complete.")
	return app, nil
}

// NewWithComponents assembles an App around already constructed parts.
// jobClient may be nil.
func NewWithComponents(cfg *config.Config, st store.Store, jobClient store.JobClient, c classifier.Classifier, inputProc inputprocessor.Processor) *App {
	app := &App{Config: cfg, Store: st, JobClient: jobClient, Classifier: c, CostTracker: costtracker.New()}
	app.initServices(inputProc)
	return app
}

// --- Private Helper Methods ---

func (a *App) initStore(ctx context.Context) error {
	switch a.Config.Database.Driver {
	case "postgres":
		ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("init postgres store: %w", err)
		}
		a.Store = ps
	case "sqlite", "":
		ss, err := sqlite.Open(ctx, a.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("init sqlite store: %w", err)
		}
		a.Store = ss
	default:
		return fmt.Errorf("unsupported database driver %q", a.Config.Database.Driver)
	}
	return nil
}

func (a *App) initJobClient() error {
	if a.Config.Redis.Address == "" {
		log.Debug("redis.address not set, async checks are disabled.")
		return nil
	}
	jc, err := store.NewAsynqJobClient(a.RedisOpt(), a.Store)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

// RedisOpt returns the asynq connection options from config.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
}

func (a *App) initClassifier(ctx context.Context) error {
	cfg := a.Config.Classifier
	switch cfg.Provider {
	case "http", "":
		a.Classifier = classifier.NewHTTPClassifier(cfg.Endpoint, &http.Client{Timeout: cfg.Timeout})
	case "openai":
		if cfg.OpenaiApiKey == "" {
			return errors.New("OpenAI API key is required for the openai classifier but not set")
		}
		a.Classifier = classifier.NewLLMClassifier(
			openai.NewClient(cfg.OpenaiApiKey), cfg.Model, a.loadPrompt(),
			a.CostTracker, a.Config.Pricing["openai"],
		)
	case "gemini":
		gc, err := classifier.NewGeminiClassifier(ctx, cfg.GoogleApiKey, cfg.Model, a.loadPrompt())
		if err != nil {
			return fmt.Errorf("init gemini classifier: %w", err)
		}
		a.Classifier = gc
	default:
		return fmt.Errorf("unsupported classifier provider %q", cfg.Provider)
	}
	return nil
}

func (a *App) loadPrompt() string {
	prompt, err := config.LoadPromptContent(a.Config.Classifier.PromptTemplate, "classify.txt")
	if err != nil {
		log.Debugf("Using built-in classification prompt: %v", err)
		return classifier.DefaultPrompt
	}
	return prompt
}

func (a *App) initServices(inputProc inputprocessor.Processor) {
	if inputProc == nil {
		inputProc = inputprocessor.New(inputprocessor.Options{StripHTML: a.Config.Extraction.StripHTML})
	}
	a.Processor = inputProc
	a.CheckService = services.NewCheckService(a.Classifier, inputProc, a.Store, a.Config.Classifier.Timeout)
	a.Sessions = services.NewSessionRegistry(a.CheckService).
		WithLimits(a.Config.Server.MaxSessions, a.Config.Server.SessionIdleTTL)
}

func (a *App) cleanupPartialInit() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.Warnf("Error closing job client: %v", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Warnf("Error closing store: %v", err)
		}
	}
}

// Close stops open sessions and releases the store, job client and classifier.
func (a *App) Close() error {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
	if c, ok := a.Classifier.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			log.Warnf("Error closing classifier: %v", err)
		}
	}
	var errs []error
	if a.JobClient != nil {
		errs = append(errs, a.JobClient.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
