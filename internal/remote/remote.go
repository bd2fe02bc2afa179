// Package remote defines the contract for executing commands and moving
// files on remote hosts.
package remote

import (
	"context"
	"time"
)

// DefaultCheckInterval is the polling interval used by no-wait execution
// when none is configured.
const DefaultCheckInterval = 10 * time.Second

// Result holds the output from command execution.
type Result struct {
	// Stdout is the captured standard output, decoded as UTF-8 with
	// invalid byte sequences replaced. Empty in no-wait mode.
	Stdout string

	// ExitStatus is the remote process exit status.
	ExitStatus int

	// Elapsed is the wall-clock execution time in whole seconds,
	// rounded to nearest. Zero when the call did not wait.
	Elapsed int
}

// ExecOptions controls how a single command execution behaves.
type ExecOptions struct {
	// Wait blocks until the command completes and captures its output.
	Wait bool

	// CheckInterval is the polling interval in no-wait mode.
	CheckInterval time.Duration

	// Timeout bounds how long a waited execution may run. Zero means
	// no bound. Ignored in no-wait mode.
	Timeout time.Duration

	// TerminateOnTimeout sends a best-effort termination signal to the
	// remote process when Timeout expires. Delivery is not guaranteed.
	TerminateOnTimeout bool
}

// ExecOption configures a single command execution.
type ExecOption func(*ExecOptions)

// NoWait dispatches the command and polls for completion without
// capturing output.
func NoWait() ExecOption {
	return func(o *ExecOptions) {
		o.Wait = false
	}
}

// CheckInterval sets the polling interval used in no-wait mode.
func CheckInterval(d time.Duration) ExecOption {
	return func(o *ExecOptions) {
		if d > 0 {
			o.CheckInterval = d
		}
	}
}

// Timeout bounds how long a waited execution may run.
func Timeout(d time.Duration) ExecOption {
	return func(o *ExecOptions) {
		o.Timeout = d
	}
}

// TerminateOnTimeout requests a best-effort termination signal on timeout.
func TerminateOnTimeout() ExecOption {
	return func(o *ExecOptions) {
		o.TerminateOnTimeout = true
	}
}

// NewExecOptions applies the given options over the defaults.
func NewExecOptions(opts ...ExecOption) ExecOptions {
	options := ExecOptions{
		Wait:          true,
		CheckInterval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Session is an authenticated connection to one remote host.
type Session interface {
	// Execute runs a command on the remote host and returns the result.
	Execute(ctx context.Context, command string, opts ...ExecOption) (*Result, error)

	// Upload copies a local file into a remote folder under a new name.
	// Failures are reported as false, never as an error.
	Upload(ctx context.Context, localPath, remoteFolder, newName string) bool

	// Download copies a remote file into a local folder under a new name.
	// It reports true only if the local destination exists afterwards.
	Download(ctx context.Context, remotePath, localFolder, newName string) (bool, error)

	// Exists reports whether the remote path exists. Errors are
	// reported as false, never surfaced.
	Exists(ctx context.Context, remotePath string) bool

	// FindFirstWithPrefix returns the first entry in the remote
	// directory whose name starts with prefix, in listing order.
	FindFirstWithPrefix(ctx context.Context, remoteDir, prefix string) (string, bool)

	// Close terminates the connection and waits for teardown.
	Close() error

	// String returns a human-readable description of the connection.
	String() string
}
