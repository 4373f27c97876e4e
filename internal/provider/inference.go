package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// InferenceOptions configures an InferenceProvider.
type InferenceOptions struct {
	Endpoint     string
	Token        string
	Temperature  float64
	MaxNewTokens int
	Timeout      time.Duration
	Logger       *slog.Logger
	HTTPClient   *http.Client
}

// InferenceProvider calls a hosted text-generation endpoint that speaks the
// Hugging Face Inference API request and response shapes.
type InferenceProvider struct {
	opts InferenceOptions
	http *http.Client
}

// NewInferenceProvider creates an InferenceProvider.
func NewInferenceProvider(opts InferenceOptions) *InferenceProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxNewTokens <= 0 {
		opts.MaxNewTokens = 1024
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &InferenceProvider{opts: opts, http: client}
}

// Name returns the provider name
func (p *InferenceProvider) Name() string {
	return NameInference
}

// Remote reports whether the endpoint is off this machine.
func (p *InferenceProvider) Remote() bool {
	return !isLoopbackURL(p.opts.Endpoint)
}

// Available reports whether both endpoint and token are configured.
func (p *InferenceProvider) Available() bool {
	return p.opts.Endpoint != "" && p.opts.Token != ""
}

type inferenceParameters struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Generate posts prompt to the endpoint and returns the first generation.
func (p *InferenceProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", errors.New("inference endpoint or token not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			Temperature:  p.opts.Temperature,
			MaxNewTokens: p.opts.MaxNewTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.opts.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		if cerr := contextError(ctx, p.opts.Timeout); cerr != nil {
			return "", cerr
		}
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if cerr := contextError(ctx, p.opts.Timeout); cerr != nil {
			return "", cerr
		}
		return "", fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	text, err := firstGeneration(data)
	if err != nil {
		return "", err
	}
	p.opts.Logger.Debug("inference call finished", "status", resp.StatusCode, "chars", len(text))
	return text, nil
}

// firstGeneration reads generated_text from the first element of the
// response array. A bare object is accepted too; some deployments return one.
func firstGeneration(data []byte) (string, error) {
	var list []generation
	if err := json.Unmarshal(data, &list); err != nil {
		var single generation
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return "", fmt.Errorf("failed to decode inference response: %w", err)
		}
		list = []generation{single}
	}
	if len(list) == 0 {
		return "", ErrEmptyOutput
	}
	text := strings.TrimSpace(list[0].GeneratedText)
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}
