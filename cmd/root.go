// Package cmd implements the CLI front end: a thin cobra wrapper around
// the cgroup resource applier and the status store.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"crun-go/logging"
	"crun-go/status"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags.
var (
	globalRoot      string
	globalLog       string
	globalLogFormat string
	globalDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "crun-go",
	Short: "Resource-control core for an OCI-compatible container runtime",
	Long: `crun-go applies OCI resource limits to a cgroup (v1, v2, or hybrid)
and tracks container status on disk.

It does not set up namespaces, mounts, or the init process; it consumes a
cgroup path and an already-running worker process pid, same as a runtime's
resource-control layer is expected to.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

// GetStore opens the status store rooted at --root, or the default.
func GetStore() (*status.Store, error) {
	return status.NewStore(globalRoot)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalRoot, "root", "", "root directory for container status (default: $XDG_RUNTIME_DIR/crun or /run/crun)")
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	logOutput := os.Stderr
	if globalLog != "" {
		if f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			logOutput = f
		}
	}

	logLevel := slog.LevelInfo
	if globalDebug {
		logLevel = slog.LevelDebug
	}

	logger := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Format: globalLogFormat,
		Output: logOutput,
	})
	logging.SetDefault(logger)
}
