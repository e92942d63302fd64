package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/phyloreport/internal/config"
	"github.com/nao1215/phyloreport/internal/log"
	"github.com/nao1215/phyloreport/internal/report"
	"github.com/spf13/cobra"
)

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "verbose")
}

// buildConfig creates a Config from the flags shared by render and batch.
// Command specific flags are read by the caller.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit settings file must exist. Without one, a missing file
	// simply means no defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ShowIdentifiers = getBoolFlag(cmd, "show-identifiers")
	cfg.Snapshots = args

	return cfg, nil
}

// setupLogger creates the stderr logger. Patient identifiers are masked
// unless the user asked to see them.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.ShowIdentifiers)
}

// signalContext returns a context cancelled on interrupt or termination.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// reportOptions returns the options applied to every rendered report.
func reportOptions(cfg *config.Config) []report.Option {
	return append([]report.Option{report.WithVersion(getVersion())}, cfg.File.ReportOptions()...)
}

// ensureDir creates the parent directory of path if needed.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
