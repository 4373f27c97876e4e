package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaOptions configures an OllamaAPIProvider.
type OllamaOptions struct {
	ServerURL    string
	Model        string
	Temperature  float64
	MaxNewTokens int
	Timeout      time.Duration
	Logger       *slog.Logger
}

// OllamaAPIProvider talks to an Ollama server over its HTTP API.
type OllamaAPIProvider struct {
	opts OllamaOptions
	llm  *ollama.LLM
}

// NewOllamaAPIProvider creates an OllamaAPIProvider. No connection is made
// until Generate.
func NewOllamaAPIProvider(opts OllamaOptions) (*OllamaAPIProvider, error) {
	if opts.Model == "" {
		opts.Model = "llama3"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var llm *ollama.LLM
	if opts.ServerURL != "" {
		l, err := ollama.New(ollama.WithModel(opts.Model), ollama.WithServerURL(opts.ServerURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		llm = l
	}
	return &OllamaAPIProvider{opts: opts, llm: llm}, nil
}

// Name returns the provider name
func (p *OllamaAPIProvider) Name() string {
	return NameOllamaAPI
}

// Available reports whether a server URL is configured.
func (p *OllamaAPIProvider) Available() bool {
	return p.llm != nil
}

// Remote reports whether the server is off this machine.
func (p *OllamaAPIProvider) Remote() bool {
	return !isLoopbackURL(p.opts.ServerURL)
}

// Generate runs a single-prompt completion against the server.
func (p *OllamaAPIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.llm == nil {
		return "", fmt.Errorf("ollama server url not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	opts := []llms.CallOption{llms.WithTemperature(p.opts.Temperature)}
	if p.opts.MaxNewTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.opts.MaxNewTokens))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt, opts...)
	if err != nil {
		if cerr := contextError(ctx, p.opts.Timeout); cerr != nil {
			return "", cerr
		}
		return "", fmt.Errorf("ollama call failed: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
