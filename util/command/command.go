// Package command wraps os/exec with a bounded wait, buffered output
// capture, and functional-options configuration, following the shape of
// the reference daemon's own util/command package.
package command

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mikempw/failover/util/funcopt"
)

// ErrExitCode is returned when the command runs but exits non-zero.
type ErrExitCode struct {
	Name     string
	ExitCode int
}

func (e *ErrExitCode) Error() string {
	return errors.Errorf("%s: exit code %d", e.Name, e.ExitCode).Error()
}

// T is a single command invocation.
type T struct {
	name    string
	args    []string
	timeout time.Duration
	cwd     string
	env     []string
	log     *zerolog.Logger

	stdout bytes.Buffer
	stderr bytes.Buffer
}

// New builds a command from a name/args pair and functional options.
func New(opts ...funcopt.O) (*T, error) {
	t := &T{}
	if err := funcopt.Apply(t, opts...); err != nil {
		return nil, err
	}
	return t, nil
}

// NewFromLine splits a shell command line with go-shlex, the way the
// reference daemon's util/command splits its resource-driver commands.
func NewFromLine(line string, opts ...funcopt.O) (*T, error) {
	words, err := shlex.Split(line, true)
	if err != nil {
		return nil, errors.Wrap(err, "command: split line")
	}
	if len(words) == 0 {
		return nil, errors.New("command: empty command line")
	}
	all := append([]funcopt.O{WithName(words[0]), WithArgs(words[1:])}, opts...)
	return New(all...)
}

// Run executes the command to completion, killing it if timeout elapses.
// Stdout is returned; stderr is captured for error context.
func (t *T) Run(ctx context.Context) ([]byte, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.name, t.args...)
	cmd.Stdout = &t.stdout
	cmd.Stderr = &t.stderr
	if t.cwd != "" {
		cmd.Dir = t.cwd
	}
	if len(t.env) > 0 {
		cmd.Env = t.env
	}

	if t.log != nil {
		t.log.Debug().Str("cmd", t.name).Strs("args", t.args).Msg("exec")
	}

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return t.stdout.Bytes(), errors.Errorf("command: %s: timed out after %s", t.name, t.timeout)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return t.stdout.Bytes(), &ErrExitCode{Name: t.name, ExitCode: exitErr.ExitCode()}
		}
		return t.stdout.Bytes(), errors.Wrapf(err, "command: %s", t.name)
	}
	return t.stdout.Bytes(), nil
}

// Stderr returns the captured standard error of the last Run call.
func (t *T) Stderr() []byte { return t.stderr.Bytes() }
