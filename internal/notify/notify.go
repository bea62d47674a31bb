// Package notify tells the CCR service that its config changed.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds how long the CCR command may run
const DefaultTimeout = 10 * time.Second

// ErrCommandNotFound is returned when the CCR binary is not on PATH
var ErrCommandNotFound = errors.New("command not found")

// Runner executes an external command and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Result describes what Restart did
type Result struct {
	Command string
	Output  string
	Skipped bool
}

// Notifier issues the configured CCR command after a config write
type Notifier struct {
	bin     string
	args    []string
	pidFile string
	timeout time.Duration
	runner  Runner
	log     zerolog.Logger
}

// Option configures a Notifier
type Option func(*Notifier)

// WithRunner replaces the command runner
func WithRunner(r Runner) Option {
	return func(n *Notifier) {
		n.runner = r
	}
}

// WithPIDFile makes Restart skip the command when the PID recorded in
// path belongs to no running process
func WithPIDFile(path string) Option {
	return func(n *Notifier) {
		n.pidFile = path
	}
}

// WithTimeout sets the command timeout
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(log zerolog.Logger) Option {
	return func(n *Notifier) {
		n.log = log
	}
}

// New creates a Notifier that runs bin with args
func New(bin string, args []string, opts ...Option) *Notifier {
	n := &Notifier{
		bin:     bin,
		args:    args,
		timeout: DefaultTimeout,
		runner:  ExecRunner{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// CommandLine returns the command as it would be typed in a shell
func (n *Notifier) CommandLine() string {
	return strings.Join(append([]string{n.bin}, n.args...), " ")
}

// Restart runs the CCR command. Errors are meant to be reported as
// warnings: the config has already been written when this runs.
func (n *Notifier) Restart(ctx context.Context) (Result, error) {
	res := Result{Command: n.CommandLine()}

	if pid, ok := readPID(n.pidFile); ok && !processAlive(pid) {
		n.log.Debug().Int("pid", pid).Str("pid_file", n.pidFile).Msg("CCR not running, skipping restart")
		res.Skipped = true
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	n.log.Debug().Str("command", res.Command).Dur("timeout", n.timeout).Msg("notifying CCR")
	out, err := n.runner.Run(ctx, n.bin, n.args...)
	res.Output = strings.TrimSpace(string(out))
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("%w: %s", ErrCommandNotFound, n.bin)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return res, fmt.Errorf("'%s' timed out after %s", res.Command, n.timeout)
	case res.Output != "":
		return res, fmt.Errorf("'%s' failed: %w: %s", res.Command, err, res.Output)
	default:
		return res, fmt.Errorf("'%s' failed: %w", res.Command, err)
	}
}

func readPID(path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
