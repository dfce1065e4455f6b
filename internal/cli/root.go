// Package cli implements the command-line interface for anno.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/annohub/anno/internal/config"
	"github.com/annohub/anno/internal/remote"
	"github.com/annohub/anno/internal/store"
	"github.com/spf13/cobra"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Store  *store.Store
	Client remote.Client
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// initContext loads config and opens the store (no client)
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to open store: %v", err)
	}

	return &cmdContext{Config: cfg, Store: st}
}

// initClientContext initializes config, store, and an authenticated API
// client with retries.
func initClientContext() *cmdContext {
	c := initContext()

	token := os.Getenv(config.EnvToken)
	if token == "" {
		var err error
		token, err = c.Store.GetToken()
		if err != nil {
			c.Close()
			exitError("get token: %v", err)
		}
	}
	if token == "" {
		c.Close()
		exitError("no API token configured; run 'anno auth set-token' or set %s", config.EnvToken)
	}

	initial, maxBackoff, err := c.Config.Retry.Backoffs()
	if err != nil {
		c.Close()
		exitError("%v", err)
	}

	httpClient := remote.NewHTTPClient(c.Config.APIURL, c.Config.TeamID, token).WithLogger(logger)
	c.Client = remote.NewRetryClient(httpClient, &remote.RetryConfig{
		MaxRetries:     c.Config.Retry.MaxRetries,
		InitialBackoff: initial,
		MaxBackoff:     maxBackoff,
		JitterFraction: 0.25,
	}).WithLogger(logger)

	return c
}

// projectID returns the --project flag value, falling back to the
// workspace's default project.
func (c *cmdContext) projectID(flag int) int {
	if flag > 0 {
		return flag
	}
	if c.Config.DefaultProject > 0 {
		return c.Config.DefaultProject
	}
	c.Close()
	exitError("no project selected; pass --project or run 'anno project use <id>'")
	return 0
}

var (
	logLevel  string
	logFormat string

	// logger receives diagnostics. Replaced in PersistentPreRunE.
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "anno",
	Short: "Annotation platform client",
	Long: `anno is a command-line client for the annotation platform. It manages
projects and folders, caches class catalogs, resolves class and attribute
names in annotation files to catalog IDs, uploads and downloads annotations,
and converts video annotations to the editor timeline format.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(os.Stderr, logLevel, logFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOrDefault("ANNO_LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOrDefault("ANNO_LOG_FORMAT", "text"), "Log format (text, json)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(statsCmd)
}

// newLogger builds the diagnostics logger. Diagnostics go to w so that
// command output on stdout stays machine-readable.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
