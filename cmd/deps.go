package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/ai/gemini"
	"github.com/spigell/jobapply/internal/ai/ollama"
	"github.com/spigell/jobapply/internal/assistant"
	"github.com/spigell/jobapply/internal/kv"
	"github.com/spigell/jobapply/internal/logger"
	"github.com/spigell/jobapply/internal/profile"
	"github.com/spigell/jobapply/internal/secrets"
)

// env is the set of components a command works with.
type env struct {
	config    *Config
	logger    *zap.Logger
	store     kv.Store
	gateway   ai.Gateway
	assistant *assistant.Assistant
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing storage", zap.Error(err))
	}
	_ = e.logger.Sync()
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// setup builds the components from the configuration. Failures are fatal.
func setup(ctx context.Context) *env {
	l := newLogger()

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Debug("starting", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	l.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := kv.Open(ctx, config.Storage)
	if err != nil {
		l.Fatal("opening storage",
			zap.Error(err),
			zap.String("hint", "check the storage section of the configuration file"),
		)
	}

	resume, err := loadResume(config.Profile)
	if err != nil {
		l.Fatal("loading resume", zap.Error(err))
	}

	gateway, err := newGateway(ctx, config.AI, l)
	if err != nil {
		l.Warn("answering without a model", zap.Error(err))
	}

	a := assistant.New(store, gateway, resume, assistantOptions(config.AI, gateway), l)
	a.Restore(ctx)

	if err := seedProfile(ctx, a.Profiles(), config.Profile, resume); err != nil {
		l.Fatal("loading profile",
			zap.Error(err),
			zap.String("hint", "set profile.file to a readable yaml file or remove it"),
		)
	}

	return &env{config: config, logger: l, store: store, gateway: gateway, assistant: a}
}

// assistantOptions picks the models of the configured provider. Gemini has no separate
// reasoning model, so both point at the gateway's model.
func assistantOptions(cfg AIConfig, gateway ai.Gateway) assistant.Options {
	if gateway != nil && gateway.Provider() == ai.ProviderGemini {
		return assistant.Options{Model: gateway.Model(), ReasoningModel: gateway.Model()}
	}
	return assistant.Options{
		Model:          cfg.Ollama.Model,
		ReasoningModel: cfg.Ollama.ReasoningModel,
	}
}

func loadResume(cfg ProfileConfig) (profile.Resume, error) {
	if strings.TrimSpace(cfg.ResumeFile) == "" {
		return profile.Resume{}, nil
	}
	return profile.LoadResume(cfg.ResumeFile)
}

// seedProfile stores the configured profile, or one parsed from the resume, unless a profile is already stored.
func seedProfile(ctx context.Context, profiles *profile.Store, cfg ProfileConfig, resume profile.Resume) error {
	if strings.TrimSpace(cfg.File) != "" {
		p, prefs, err := profile.LoadFile(cfg.File)
		if err != nil {
			return err
		}
		profiles.Seed(ctx, p, prefs)
		return nil
	}

	if resume.Empty() {
		return nil
	}

	p := profile.ParseResume(resume.Text, time.Now())
	profiles.Seed(ctx, p, profile.DefaultPreferences(p))
	return nil
}

func newGateway(ctx context.Context, cfg AIConfig, l *zap.Logger) (ai.Gateway, error) {
	var gw ai.Gateway

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "ollama":
		client := ollama.New(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Ollama.Timeout,
			logger.WithCommonFields(l, "ollama", cfg.Ollama.Model))
		client.SetMaxLogLength(cfg.MaxLogLength)
		gw = client
	case "gemini":
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model,
			logger.WithCommonFields(l, "gemini", cfg.Gemini.Model))
		if err != nil {
			return nil, err
		}
		generator.SetMaxLogLength(cfg.MaxLogLength)
		gw = generator
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	return ai.WithRetry(gw, cfg.MaxRetries, l.With(zap.Int("ai_retry_attempts", cfg.MaxRetries))), nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
