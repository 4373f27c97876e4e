package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaAPIProvider_Generate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "extract methods", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, `{"model":"mistral","message":{"role":"assistant","content":"[{\"Method\": \"U-Net\"}]"},"done":true}`+"\n")
	}))
	defer server.Close()

	p, err := NewOllamaAPIProvider(OllamaOptions{ServerURL: server.URL, Model: "mistral", Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.True(t, p.Available())
	assert.Equal(t, NameOllamaAPI, p.Name())

	out, err := p.Generate(context.Background(), "extract methods")
	require.NoError(t, err)
	assert.Equal(t, `[{"Method": "U-Net"}]`, out)
}

func TestOllamaAPIProvider_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"model 'mistral' not found"}`+"\n")
	}))
	defer server.Close()

	p, err := NewOllamaAPIProvider(OllamaOptions{ServerURL: server.URL, Model: "mistral"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOllamaAPIProvider_NotConfigured(t *testing.T) {
	t.Parallel()

	p, err := NewOllamaAPIProvider(OllamaOptions{})
	require.NoError(t, err)
	assert.False(t, p.Available())

	_, err = p.Generate(context.Background(), "p")
	assert.Error(t, err)
}
