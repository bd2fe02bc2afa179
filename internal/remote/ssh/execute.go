package ssh

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/ssh"

	"github.com/remsh/remsh/internal/remote"
)

// waitResult carries the terminal state of a remote process.
type waitResult struct {
	status int
	err    error
}

// Execute runs a command on the remote host.
//
// By default it blocks until the command completes and returns the
// captured stdout, the exit status, and the elapsed whole seconds. With
// remote.NoWait() it dispatches the command and polls for completion at
// the configured check interval, returning an empty output and zero
// elapsed time once the process reaches a terminal state.
//
// Stderr is drained and logged for diagnostics but never returned.
func (s *Session) Execute(ctx context.Context, command string, opts ...remote.ExecOption) (*remote.Result, error) {
	options := remote.NewExecOptions(opts...)

	if s.isClosed() {
		return nil, &remote.ExecError{Command: command, Err: errSessionClosed}
	}

	s.log.Info("executing command", "command", command)

	var stdout, stderr bytes.Buffer
	out, errOut := io.Writer(&stdout), io.Writer(&stderr)
	if !options.Wait {
		// No-wait mode never reads the output streams.
		out, errOut = io.Discard, io.Discard
	}

	proc, err := s.newCommand(out, errOut)
	if err != nil {
		s.log.Error("failed to open command channel", "command", command, "error", err)
		return nil, &remote.ExecError{Command: command, Err: err}
	}
	defer proc.Close()

	if err := proc.Start(command); err != nil {
		s.log.Error("failed to dispatch command", "command", command, "error", err)
		return nil, &remote.ExecError{Command: command, Err: err}
	}

	done := make(chan waitResult, 1)
	go func() {
		status, waitErr := proc.Wait()
		done <- waitResult{status: status, err: waitErr}
	}()

	if !options.Wait {
		return s.pollCompletion(command, done, options.CheckInterval)
	}

	start := time.Now()
	var res waitResult

	if options.Timeout > 0 {
		timer := time.NewTimer(options.Timeout)
		defer timer.Stop()
		select {
		case res = <-done:
		case <-timer.C:
			if options.TerminateOnTimeout {
				if err := proc.Signal(ssh.SIGTERM); err != nil {
					s.log.Debug("termination signal failed", "command", command, "error", err)
				}
			}
			s.log.Error("command timed out", "command", command, "timeout", options.Timeout)
			return nil, &remote.TimeoutError{Command: command, Timeout: options.Timeout}
		case <-ctx.Done():
			return nil, &remote.ExecError{Command: command, Err: ctx.Err()}
		}
	} else {
		select {
		case res = <-done:
		case <-ctx.Done():
			return nil, &remote.ExecError{Command: command, Err: ctx.Err()}
		}
	}

	elapsed := int(math.Round(time.Since(start).Seconds()))

	if res.err != nil {
		s.log.Error("command failed", "command", command, "error", res.err)
		return nil, &remote.ExecError{Command: command, Err: res.err}
	}

	s.log.Info("command completed", "command", command, "status", res.status, "elapsed", elapsed)
	s.log.Debug("command stdout", "command", command, "stdout", stdout.String())
	if stderr.Len() > 0 {
		s.log.Error("command stderr", "command", command, "stderr", stderr.String())
	}

	return &remote.Result{
		Stdout:     decodeOutput(stdout.Bytes()),
		ExitStatus: res.status,
		Elapsed:    elapsed,
	}, nil
}

// pollCompletion checks for process termination at the given interval.
// It never returns a TimeoutError; completion has no upper bound here.
func (s *Session) pollCompletion(command string, done <-chan waitResult, interval time.Duration) (*remote.Result, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case res := <-done:
			if res.err != nil {
				s.log.Error("command failed", "command", command, "error", res.err)
				return nil, &remote.ExecError{Command: command, Err: res.err}
			}
			s.log.Info("command completed", "command", command, "status", res.status)
			return &remote.Result{ExitStatus: res.status}, nil
		case <-ticker.C:
			s.log.Debug("command still running", "command", command)
		}
	}
}

// decodeOutput interprets raw output as UTF-8, substituting one
// replacement character per invalid byte.
func decodeOutput(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(b[:size])
		}
		b = b[size:]
	}
	return sb.String()
}
