// Package ssh implements the remote session contract over the SSH protocol,
// with SFTP for file transfer.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/remsh/remsh/internal/remote"
)

const (
	defaultPort              = 22
	defaultDialTimeout       = 10 * time.Second
	defaultKeepaliveInterval = 30 * time.Second
)

var errSessionClosed = errors.New("session is closed")

// Config holds connection parameters for one remote host.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string

	// KeepaliveInterval is the period between liveness probes sent to
	// prevent idle-timeout disconnection. If zero, 30s is used.
	KeepaliveInterval time.Duration

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, 10s is used.
	DialTimeout time.Duration

	// HostKeyCallback handles host key verification. If nil,
	// ssh.InsecureIgnoreHostKey() is used; use KnownHostsCallback for
	// strict verification against a known_hosts file.
	HostKeyCallback ssh.HostKeyCallback

	// Logger receives structured log entries. If nil, the process
	// default logger is used.
	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.KeepaliveInterval == 0 {
		c.KeepaliveInterval = defaultKeepaliveInterval
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.HostKeyCallback == nil {
		c.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // default matches inherited behavior; callers opt in to verification
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// KnownHostsCallback returns a host key callback backed by an OpenSSH
// known_hosts file. Hosts missing from the file are rejected.
func KnownHostsCallback(path string) (ssh.HostKeyCallback, error) {
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known hosts %s: %w", path, err)
	}
	return cb, nil
}

// Session is an authenticated SSH connection to one remote host.
type Session struct {
	cfg    Config
	client *ssh.Client
	log    *log.Logger

	closed        atomic.Bool
	stopKeepalive chan struct{}
	keepaliveDone chan struct{}

	// seams for tests
	newCommand func(stdout, stderr io.Writer) (commandSession, error)
	openFS     func() (fileSystem, error)
}

// Connect opens one authenticated connection using password credentials.
// On any authentication or transport failure the caller receives a
// ConnectError and no session.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	addr := cfg.addr()
	logger := cfg.Logger

	logger.Info("connecting", "addr", addr, "user", cfg.User)

	clientCfg := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		HostKeyCallback: cfg.HostKeyCallback,
		Timeout:         cfg.DialTimeout,
	}

	var client *ssh.Client
	var dialErr error
	dialDone := make(chan struct{})
	go func() {
		defer close(dialDone)
		client, dialErr = ssh.Dial("tcp", addr, clientCfg)
	}()

	select {
	case <-ctx.Done():
		// Reap the connection if the abandoned dial succeeds later.
		go func() {
			<-dialDone
			if client != nil {
				client.Close()
			}
		}()
		return nil, &remote.ConnectError{Addr: addr, Err: ctx.Err()}
	case <-dialDone:
		if dialErr != nil {
			logger.Error("connection failed", "addr", addr, "error", dialErr)
			return nil, &remote.ConnectError{Addr: addr, Err: dialErr}
		}
	}

	s := &Session{
		cfg:           cfg,
		client:        client,
		log:           logger,
		stopKeepalive: make(chan struct{}),
		keepaliveDone: make(chan struct{}),
	}
	s.newCommand = s.sshCommand
	s.openFS = s.dialSFTP
	go s.keepaliveLoop()

	logger.Info("connected", "addr", addr)
	return s, nil
}

// keepaliveLoop sends periodic keepalive requests until the session closes.
func (s *Session) keepaliveLoop() {
	defer close(s.keepaliveDone)
	ticker := time.NewTicker(s.cfg.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopKeepalive:
			return
		case <-ticker.C:
			if _, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				s.log.Warn("keepalive failed", "addr", s.cfg.addr(), "error", err)
			}
		}
	}
}

// Close requests graceful shutdown and waits for it to complete. It is
// safe to call on a nil or already-closed session.
func (s *Session) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.stopKeepalive != nil {
		close(s.stopKeepalive)
		<-s.keepaliveDone
	}
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	// Wait returns once the underlying connection has torn down.
	_ = s.client.Wait()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	s.log.Info("connection closed", "addr", s.cfg.addr())
	return nil
}

func (s *Session) isClosed() bool {
	return s.closed.Load()
}

// String returns a description of the connection.
func (s *Session) String() string {
	return fmt.Sprintf("ssh://%s@%s", s.cfg.User, s.cfg.addr())
}

// commandSession abstracts the per-command channel so execution paths can
// be exercised in tests.
type commandSession interface {
	Start(cmd string) error
	// Wait blocks until the process terminates and returns its exit
	// status. A non-nil error indicates a transport failure, not a
	// non-zero exit.
	Wait() (int, error)
	Signal(sig ssh.Signal) error
	Close() error
}

type sshCommand struct {
	sess *ssh.Session
}

func (c *sshCommand) Start(cmd string) error { return c.sess.Start(cmd) }

func (c *sshCommand) Wait() (int, error) {
	err := c.sess.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	return 0, err
}

func (c *sshCommand) Signal(sig ssh.Signal) error { return c.sess.Signal(sig) }

func (c *sshCommand) Close() error { return c.sess.Close() }

// sshCommand opens a remote process channel with output attached to the
// given writers.
func (s *Session) sshCommand(stdout, stderr io.Writer) (commandSession, error) {
	raw, err := s.client.NewSession()
	if err != nil {
		return nil, err
	}
	raw.Stdout = stdout
	raw.Stderr = stderr
	return &sshCommand{sess: raw}, nil
}

// dialSFTP opens a short-lived file transfer channel over the session.
func (s *Session) dialSFTP() (fileSystem, error) {
	if s.isClosed() {
		return nil, errSessionClosed
	}
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return nil, err
	}
	return &sftpFS{client: client}, nil
}

// Ensure Session implements the remote.Session interface.
var _ remote.Session = (*Session)(nil)
