package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/runger/methodmap/internal/termtext"
)

// DefaultCommand runs a local Llama 3 through the Ollama CLI.
const DefaultCommand = "ollama run llama3"

// processWaitDelay bounds how long Generate waits for output pipes to close
// after the process has been killed.
const processWaitDelay = 2 * time.Second

// ProcessOptions configures a ProcessProvider.
type ProcessOptions struct {
	Command string   // command line, split with shell quoting rules
	Argv    []string // explicit argv; takes precedence over Command
	Env     []string // extra KEY=VALUE pairs appended to the environment
	Timeout time.Duration
	Logger  *slog.Logger
}

// ProcessProvider runs a local model command, writing the prompt to its stdin
// and reading the completion from its stdout.
type ProcessProvider struct {
	argv    []string
	env     []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewProcessProvider creates a ProcessProvider. It fails when the command line
// cannot be split or is empty.
func NewProcessProvider(opts ProcessOptions) (*ProcessProvider, error) {
	argv := opts.Argv
	if len(argv) == 0 {
		command := opts.Command
		if command == "" {
			command = DefaultCommand
		}
		var err error
		argv, err = shlex.Split(command)
		if err != nil {
			return nil, fmt.Errorf("invalid model command %q: %w", command, err)
		}
	}
	if len(argv) == 0 {
		return nil, errors.New("model command is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ProcessProvider{
		argv:    argv,
		env:     opts.Env,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}, nil
}

// Name returns the provider name
func (p *ProcessProvider) Name() string {
	return NameProcess
}

// Available checks that the command's executable is on PATH.
func (p *ProcessProvider) Available() bool {
	_, err := exec.LookPath(p.argv[0])
	return err == nil
}

// Remote returns false; the process runs on this machine.
func (p *ProcessProvider) Remote() bool {
	return false
}

// Command returns the argv the provider executes.
func (p *ProcessProvider) Command() []string {
	return append([]string(nil), p.argv...)
}

// Generate runs the command once with prompt on stdin.
//
// Anything on stderr is logged. A failing exit status is tolerated when the
// process still wrote a completion; it is only reported when stdout is empty.
func (p *ProcessProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if !strings.HasSuffix(prompt, "\n") {
		prompt += "\n"
	}

	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	configureProcess(cmd)
	cmd.WaitDelay = processWaitDelay
	cmd.Stdin = strings.NewReader(prompt)
	if len(p.env) > 0 {
		cmd.Env = append(os.Environ(), p.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if err := contextError(ctx, p.timeout); err != nil {
		return "", err
	}

	errText := strings.TrimSpace(stderr.String())
	if errText != "" {
		p.logger.Warn("model process wrote to stderr", "command", p.argv[0], "stderr", truncate(errText, 500))
	}

	// CLI runners such as ollama may draw a spinner with escape codes.
	out := strings.TrimSpace(termtext.StripANSI(stdout.String()))
	if out != "" {
		if runErr != nil {
			p.logger.Warn("model process exited with error after producing output", "command", p.argv[0], "error", runErr)
		}
		return out, nil
	}

	switch {
	case runErr != nil && errText != "":
		return "", fmt.Errorf("model process failed: %w: %s", runErr, truncate(errText, 500))
	case runErr != nil:
		return "", fmt.Errorf("model process failed: %w", runErr)
	case errText != "":
		return "", fmt.Errorf("%w: %s", ErrEmptyOutput, truncate(errText, 500))
	default:
		return "", ErrEmptyOutput
	}
}
