package remote

import (
	"fmt"
	"time"
)

// ConnectError indicates an authentication or transport failure while
// establishing a connection.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ExecError indicates a transport-level failure while dispatching or
// awaiting a command.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// TimeoutError indicates a waited execution exceeded its configured
// deadline. It is distinct from ExecError so callers can apply different
// retry logic.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execute %q: timed out after %s", e.Command, e.Timeout)
}

// NotFoundError indicates a download requested a remote path that does
// not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("remote file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// TransferError indicates a download protocol failure other than a
// missing remote file.
type TransferError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
