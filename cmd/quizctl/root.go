package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quizboard/internal/adapters/clients"
	"github.com/jsamuelsen/quizboard/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quizboard/internal/app"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/platform/logging"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// options carries the injectable dependencies of the command tree.
type options struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// backend replaces the HTTP quiz backend, for tests.
	backend func(cfg *config.Config, logger *slog.Logger) (ports.QuizBackend, error)
}

// cli holds the state shared by every subcommand.
type cli struct {
	opts      options
	profile   string
	configDir string
	baseURL   string
	verbose   bool

	board *app.Board
}

func newRootCmd(opts options) *cobra.Command {
	if opts.stdin == nil {
		opts.stdin = os.Stdin
	}

	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}

	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}

	if opts.backend == nil {
		opts.backend = httpBackend
	}

	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "quizctl",
		Short: "Manage quizzes on the quiz backend",
		Long: `quizctl lists, creates, edits and deletes quizzes through the quiz
backend configured for quizboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(opts.stdin)
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.profile, "profile", profileFromEnv(), "config profile to load")
	flags.StringVar(&c.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	flags.StringVar(&c.baseURL, "backend-url", "", "override services.backend.base_url")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log backend calls to stderr")

	for _, sub := range []*cobra.Command{c.listCmd(), c.coursesCmd(), c.addCmd(), c.editCmd(), c.deleteCmd()} {
		sub.PreRunE = c.mount
		sub.PostRun = c.close
		root.AddCommand(sub)
	}

	return root
}

// mount loads config, builds the backend and mounts a board on it.
func (c *cli) mount(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(c.configDir, c.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.baseURL != "" {
		cfg.Services.Backend.BaseURL = c.baseURL
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   level,
		Format:  "pretty",
		Service: "quizctl",
		Version: cfg.App.Version,
	}, cmd.ErrOrStderr())

	backend, err := c.opts.backend(cfg, logger)
	if err != nil {
		return err
	}

	c.board = app.NewBoard(app.BoardConfig{ID: "quizctl", Backend: backend, Logger: logger})

	if err := c.board.Mount(cmd.Context()); err != nil {
		return fmt.Errorf("loading quizzes: %w", err)
	}

	return nil
}

func (c *cli) close(*cobra.Command, []string) {
	if c.board != nil {
		c.board.Close()
	}
}

func httpBackend(cfg *config.Config, logger *slog.Logger) (ports.QuizBackend, error) {
	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Backend.BaseURL,
		ServiceName: cfg.Services.Backend.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	return acl.NewQuizBackend(acl.QuizBackendConfig{Client: client, Logger: logger}), nil
}

func profileFromEnv() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}
