// Package main is the entrypoint for the remsh CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/remsh/remsh/internal/config"
	"github.com/remsh/remsh/internal/logging"
	"github.com/remsh/remsh/internal/output"
	"github.com/remsh/remsh/internal/remote"
	sshconn "github.com/remsh/remsh/internal/remote/ssh"
	"github.com/remsh/remsh/pkg/facts"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	debug   bool
	noColor bool
	jsonLog bool
)

// Connection flags
var (
	targetsPath string
	targetName  string
	flagHost    string
	flagPort    int
	flagUser    string
	passwordEnv string
	knownHosts  string
	keepalive   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "remsh",
	Short: "Remsh - Remote command execution and file transfer over SSH",
	Long: `Remsh runs shell commands and moves files on remote hosts over SSH,
for deployment scripts and provisioning agents that need reliable,
observable remote operations.

Hosts are addressed either directly (--host/--user) or by name from a
YAML targets file (--target). Passwords are read from the environment.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Emit logs as JSON")

	// Connection flags
	rootCmd.PersistentFlags().StringVar(&targetsPath, "targets", "targets.yaml", "Targets file")
	rootCmd.PersistentFlags().StringVarP(&targetName, "target", "t", "", "Named target from the targets file")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "Remote host (overrides --target)")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 22, "SSH port")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "SSH username")
	rootCmd.PersistentFlags().StringVar(&passwordEnv, "password-env", "REMSH_PASSWORD", "Environment variable holding the password")
	rootCmd.PersistentFlags().StringVar(&knownHosts, "known-hosts", "", "Verify host keys against this known_hosts file")
	rootCmd.PersistentFlags().IntVar(&keepalive, "keepalive", 30, "Keepalive interval in seconds")

	// Add subcommands
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(factsCmd)
}

// commandContext returns a context cancelled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// newOutput builds the CLI output handler.
func newOutput() *output.Output {
	out := output.New(os.Stdout)
	out.SetColor(!noColor)
	out.SetDebug(debug)
	return out
}

// sessionConfig resolves connection parameters from flags and, when
// --target is given, the targets file.
func sessionConfig() (sshconn.Config, error) {
	logger := logging.New(os.Stderr, logging.Options{Debug: debug, JSON: jsonLog})

	cfg := sshconn.Config{
		Logger: logger,
	}

	if targetName != "" && flagHost == "" {
		file, err := config.ParseFile(targetsPath)
		if err != nil {
			return cfg, err
		}
		target, err := file.Lookup(targetName)
		if err != nil {
			return cfg, err
		}
		password, err := target.ResolvePassword()
		if err != nil {
			return cfg, fmt.Errorf("target %q: %w", targetName, err)
		}

		cfg.Host = target.Host
		cfg.Port = target.Port
		cfg.User = target.User
		cfg.Password = password
		cfg.KeepaliveInterval = target.Keepalive()
		if target.KnownHosts != "" {
			cb, err := sshconn.KnownHostsCallback(target.KnownHosts)
			if err != nil {
				return cfg, err
			}
			cfg.HostKeyCallback = cb
		}
		return cfg, nil
	}

	if flagHost == "" || flagUser == "" {
		return cfg, fmt.Errorf("either --target or both --host and --user are required")
	}

	password := os.Getenv(passwordEnv)
	if password == "" {
		return cfg, fmt.Errorf("environment variable %s is not set", passwordEnv)
	}

	cfg.Host = flagHost
	cfg.Port = flagPort
	cfg.User = flagUser
	cfg.Password = password
	cfg.KeepaliveInterval = time.Duration(keepalive) * time.Second
	if knownHosts != "" {
		cb, err := sshconn.KnownHostsCallback(knownHosts)
		if err != nil {
			return cfg, err
		}
		cfg.HostKeyCallback = cb
	}
	return cfg, nil
}

// dial connects to the configured host.
func dial(ctx context.Context) (*sshconn.Session, error) {
	cfg, err := sessionConfig()
	if err != nil {
		return nil, err
	}
	return sshconn.Connect(ctx, cfg)
}

// execCmd runs a command on the remote host.
var execCmd = &cobra.Command{
	Use:   "exec <command>",
	Short: "Run a command on the remote host",
	Long: `Execute a shell command on the remote host.

By default exec blocks until the command completes and prints its
output. With --no-wait the command is dispatched and polled for
completion without capturing output.

Examples:
  remsh exec -t web1 'uptime'
  remsh exec -t web1 --timeout 30s 'make deploy'
  remsh exec -t web1 --no-wait --check-interval 5s 'long-batch-job'`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

var (
	noWait             bool
	checkInterval      time.Duration
	execTimeout        time.Duration
	terminateOnTimeout bool
)

func init() {
	execCmd.Flags().BoolVar(&noWait, "no-wait", false, "Dispatch without capturing output, poll for completion")
	execCmd.Flags().DurationVar(&checkInterval, "check-interval", 10*time.Second, "Polling interval with --no-wait")
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 0, "Maximum time to wait for completion (0 = unbounded)")
	execCmd.Flags().BoolVar(&terminateOnTimeout, "terminate-on-timeout", false, "Send a best-effort termination signal on timeout")
}

func runExec(cmd *cobra.Command, args []string) error {
	command := args[0]
	ctx, cancel := commandContext()
	defer cancel()

	if terminateOnTimeout && execTimeout == 0 {
		newOutput().Warn("--terminate-on-timeout has no effect without --timeout")
	}

	sess, err := dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	opts := []remote.ExecOption{
		remote.CheckInterval(checkInterval),
	}
	if noWait {
		opts = append(opts, remote.NoWait())
	}
	if execTimeout > 0 {
		opts = append(opts, remote.Timeout(execTimeout))
	}
	if terminateOnTimeout {
		opts = append(opts, remote.TerminateOnTimeout())
	}

	res, err := sess.Execute(ctx, command, opts...)
	if err != nil {
		var timeoutErr *remote.TimeoutError
		if errors.As(err, &timeoutErr) {
			return fmt.Errorf("command timed out after %s", timeoutErr.Timeout)
		}
		return err
	}

	out := newOutput()
	if noWait {
		out.Dispatched(command, res)
	} else {
		out.CommandResult(command, res)
	}

	if res.ExitStatus != 0 {
		sess.Close()
		os.Exit(res.ExitStatus)
	}
	return nil
}

// uploadCmd copies a local file to the remote host.
var uploadCmd = &cobra.Command{
	Use:   "upload <local-file> <remote-folder> <name>",
	Short: "Upload a local file to a remote folder",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := dial(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		ok := sess.Upload(ctx, args[0], args[1], args[2])
		out := newOutput()
		out.TransferResult("upload", args[0], args[1]+"/"+args[2], ok)
		if !ok {
			out.Error("upload failed")
			sess.Close()
			os.Exit(1)
		}
		return nil
	},
}

// downloadCmd copies a remote file to a local folder.
var downloadCmd = &cobra.Command{
	Use:   "download <remote-file> <local-folder> <name>",
	Short: "Download a remote file into a local folder",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := dial(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		ok, err := sess.Download(ctx, args[0], args[1], args[2])
		if err != nil {
			var notFound *remote.NotFoundError
			if errors.As(err, &notFound) {
				return fmt.Errorf("remote file not found: %s", notFound.Path)
			}
			return err
		}
		out := newOutput()
		out.TransferResult("download", args[0], args[1]+"/"+args[2], ok)
		if !ok {
			out.Error("download left no local file")
			sess.Close()
			os.Exit(1)
		}
		return nil
	},
}

// existsCmd checks whether a remote path exists.
var existsCmd = &cobra.Command{
	Use:   "exists <remote-path>",
	Short: "Check whether a remote path exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := dial(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		found := sess.Exists(ctx, args[0])
		newOutput().Probe(args[0], found)
		if !found {
			sess.Close()
			os.Exit(1)
		}
		return nil
	},
}

// findCmd searches a remote directory for the first name with a prefix.
var findCmd = &cobra.Command{
	Use:   "find <remote-dir> <prefix>",
	Short: "Find the first file in a remote directory matching a prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := dial(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		name, found := sess.FindFirstWithPrefix(ctx, args[0], args[1])
		if !found {
			newOutput().Probe(args[1]+"*", false)
			sess.Close()
			os.Exit(1)
		}
		fmt.Println(name)
		return nil
	},
}

// pingCmd verifies connectivity by connecting and disconnecting.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify the host is reachable and credentials work",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		start := time.Now()
		sess, err := dial(ctx)
		if err != nil {
			return err
		}
		desc := sess.String()
		if err := sess.Close(); err != nil {
			return err
		}
		newOutput().Info("%s reachable (%.2fs)", desc, time.Since(start).Seconds())
		return nil
	},
}

// factsCmd gathers and prints system facts from the remote host.
var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Gather system facts from the remote host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		sess, err := dial(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		gathered, err := facts.Gather(ctx, sess)
		if err != nil {
			return err
		}
		for k, v := range gathered {
			fmt.Printf("%s: %v\n", k, v)
		}
		return nil
	},
}
