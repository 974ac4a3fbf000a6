// ABOUTME: CLI entrypoint for natdash: interactive fleet/node views, one-shot node API commands, and the simulator.
// ABOUTME: Builds the cobra command tree and resolves configuration from file, environment, and flags.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/2389-research/natdash/api"
	"github.com/2389-research/natdash/config"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	logFile    string
}

// cli carries the resolved state of one invocation.
type cli struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
}

func main() {
	loadDotEnv(".env")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns an exit code: 0 for success,
// 1 for failure.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the full command tree writing to the given streams.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "natdash",
		Short: "Operator dashboard for a fleet of NAT-traversal overlay nodes",
		Long: `natdash watches and drives a fleet of overlay nodes through their HTTP API.

Without a command it opens the interactive fleet view. Views poll the node API
on a countdown and every command is sent without waiting for the node to apply
it, so the display may lag by one refresh.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFleet(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/natdash/config.yaml)")
	pf.StringVar(&c.flags.baseURL, "base-url", "", "Node API origin (default: "+config.DefaultBaseURL+")")
	pf.DurationVar(&c.flags.timeout, "timeout", 0, "Per-request timeout (default: 10s)")
	pf.StringVar(&c.flags.logFile, "log-file", "", "Log file (default: stderr, or $XDG_STATE_HOME/natdash/natdash.log for views)")

	root.AddCommand(c.fleetCmd())
	root.AddCommand(c.nodeCmd())
	root.AddCommand(c.listCmd())
	root.AddCommand(c.registerCmd())
	root.AddCommand(c.showCmd())
	root.AddCommand(c.directCmd())
	root.AddCommand(c.natCmd())
	root.AddCommand(c.chatCmd())
	root.AddCommand(c.watchCmd())
	root.AddCommand(c.simCmd())
	root.AddCommand(versionCmd(stdout))

	return root
}

// loadConfig resolves configuration: file, then environment, then flags
// explicitly given on the command line, then defaults.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = c.flags.baseURL
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = c.flags.timeout
	}
	if flags.Changed("log-file") {
		cfg.LogFile = c.flags.logFile
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds an API client for the resolved config and routes the log.
func (c *cli) newClient(cmd *cobra.Command) (*api.Client, *config.Config, func(), error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	closeLog, err := c.routeLog(cmd, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return api.NewClient(cfg.BaseURL, api.WithTimeout(cfg.RequestTimeout)), cfg, closeLog, nil
}

// routeLog sends the log of a non-interactive command to stderr, or to the
// log file when --log-file was given. The returned func restores stderr.
func (c *cli) routeLog(cmd *cobra.Command, cfg *config.Config) (func(), error) {
	if !cmd.Flags().Changed("log-file") {
		log.SetOutput(c.stderr)
		return func() {}, nil
	}
	f, err := openLogFile(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(c.stderr)
		f.Close()
	}, nil
}

// openLogFile opens path for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(stderr io.Writer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(stderr, "\nInterrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "natdash %s\n", version)
		},
	}
}
