package provider

import (
	"log/slog"
	"time"

	"github.com/runger/methodmap/internal/config"
)

// FromConfig builds a registry holding every backend described by cfg, with
// cfg.Provider as the preference.
func FromConfig(cfg config.ModelConfig, logger *slog.Logger) (*Registry, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	process, err := NewProcessProvider(ProcessOptions{
		Command: cfg.Command,
		Timeout: timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	inference := NewInferenceProvider(InferenceOptions{
		Endpoint:     cfg.Endpoint,
		Token:        cfg.Token,
		Temperature:  cfg.Temperature,
		MaxNewTokens: cfg.MaxNewTokens,
		Timeout:      timeout,
		Logger:       logger,
	})

	ollamaAPI, err := NewOllamaAPIProvider(OllamaOptions{
		ServerURL:    cfg.OllamaURL,
		Model:        cfg.OllamaModel,
		Temperature:  cfg.Temperature,
		MaxNewTokens: cfg.MaxNewTokens,
		Timeout:      timeout,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	r := NewRegistry(process, inference, ollamaAPI)
	r.SetPreferred(cfg.Provider)
	return r, nil
}
