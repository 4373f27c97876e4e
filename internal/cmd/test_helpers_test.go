package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/runger/methodmap/internal/config"
	"github.com/runger/methodmap/internal/logging"
	"github.com/runger/methodmap/internal/pipeline"
	"github.com/runger/methodmap/internal/provider"
	"github.com/runger/methodmap/internal/runs"
	"github.com/runger/methodmap/internal/scholar"
)

type stubFetcher struct {
	abstracts []string
	queries   []scholar.SearchQuery
}

func (f *stubFetcher) FetchAbstracts(_ context.Context, q scholar.SearchQuery) []string {
	f.queries = append(f.queries, q)
	return f.abstracts
}

type stubProvider struct {
	output  string
	err     error
	prompts []string
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return true }

func (p *stubProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.output, p.err
}

// testApp is the state shared by every app handed out during one test.
type testApp struct {
	dir      string
	paths    *config.Paths
	fetcher  *stubFetcher
	provider *stubProvider
}

// withTestApp points newApp at stubs and a file store under a temp dir.
func withTestApp(t *testing.T, abstracts []string, output string) *testApp {
	t.Helper()
	root := t.TempDir()
	env := &testApp{
		dir: filepath.Join(root, "runs"),
		paths: &config.Paths{
			ConfigDir: filepath.Join(root, "config"),
			DataDir:   filepath.Join(root, "data"),
			CacheDir:  filepath.Join(root, "cache"),
		},
		fetcher:  &stubFetcher{abstracts: abstracts},
		provider: &stubProvider{output: output},
	}
	t.Setenv("COLUMNS", "200")

	old := newApp
	newApp = func() (*app, error) {
		cfg := config.DefaultConfig()
		cfg.Runs.Dir = env.dir
		store, err := runs.Open(runs.BackendFile, env.dir, "")
		if err != nil {
			return nil, err
		}
		logger := logging.Discard()
		registry := provider.NewRegistry(env.provider)
		registry.SetPreferred(provider.Auto)
		return &app{
			cfg:      cfg,
			paths:    env.paths,
			logger:   logger,
			registry: registry,
			store:    store,
			extractor: &pipeline.Extractor{
				Fetcher:  env.fetcher,
				Provider: env.provider,
				Store:    store,
				History:  pipeline.NewHistory(pipeline.DefaultHistorySize),
				Logger:   logger,
				Limit:    cfg.Search.Limit,
			},
		}, nil
	}
	t.Cleanup(func() { newApp = old })
	return env
}

func withOutputFlags(t *testing.T, target *outputFlags, o outputFlags) {
	t.Helper()
	old := *target
	*target = o
	t.Cleanup(func() { *target = old })
}

func withColorMode(t *testing.T, mode string) {
	t.Helper()
	old := colorMode
	colorMode = mode
	t.Cleanup(func() {
		colorMode = old
		applyColorMode()
	})
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() failed: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()
	_ = w.Close()
	os.Stdout = old
	out := <-outC
	_ = r.Close()
	return out
}
