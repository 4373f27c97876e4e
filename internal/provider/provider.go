// Package provider invokes a language model with a prompt and returns its raw
// text completion. Backends differ only in transport: a local process, a
// remote inference endpoint, or an Ollama server.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 120 * time.Second

// Provider names.
const (
	NameProcess   = "process"
	NameInference = "inference"
	NameOllamaAPI = "ollama-api"
)

var (
	// ErrTimeout is returned when a model call exceeds its deadline.
	ErrTimeout = errors.New("model call timed out")
	// ErrInterrupted is returned when the caller cancels a model call.
	ErrInterrupted = errors.New("model call interrupted")
	// ErrHTTPStatus is returned when a remote backend answers with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrEmptyOutput is returned when the model produced no usable text.
	ErrEmptyOutput = errors.New("model produced no output")
)

// Provider defines the interface for model backends.
type Provider interface {
	// Name returns the provider name (e.g., "process", "inference")
	Name() string

	// Available reports whether the backend can be used (binary found,
	// endpoint and token configured).
	Available() bool

	// Generate sends prompt to the model and returns the raw completion.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Remoter is implemented by providers that know whether prompts leave the
// machine.
type Remoter interface {
	Remote() bool
}

// IsRemote reports whether prompts sent to p may leave the machine. Providers
// that do not implement Remoter are treated as remote.
func IsRemote(p Provider) bool {
	if r, ok := p.(Remoter); ok {
		return r.Remote()
	}
	return true
}

// isLoopbackURL reports whether raw points at this machine.
func isLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// contextError maps a finished call's context state onto the package errors.
// It returns nil when neither deadline nor cancellation caused the failure.
func contextError(ctx context.Context, timeout time.Duration) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		return ErrInterrupted
	default:
		return nil
	}
}

// StatusError carries the status and a body excerpt of a failed remote call.
// It matches ErrHTTPStatus with errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v %d: %s", ErrHTTPStatus, e.StatusCode, e.Body)
}

// Is reports whether target is ErrHTTPStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
