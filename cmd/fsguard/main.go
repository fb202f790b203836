// Package main is the entry point for the fsguard CLI.
//
// Every subcommand loads the configuration, applies the --root override and
// builds a fileops.Manager confined to the resulting root, so paths given on
// the command line can never reach outside it.
package main

import (
	"errors"
	"fmt"
	"os"

	"fsguard/internal/config"
	"fsguard/internal/logging"
	"fsguard/pkg/fileops"

	"github.com/spf13/cobra"
)

var (
	rootFlag   string
	configFlag string
	verbose    bool

	appLogger *logging.AppLogger
)

var rootCmd = &cobra.Command{
	Use:   "fsguard",
	Short: "Root-confined file operations",
	Long: `fsguard reads, writes, moves and deletes files inside a single root directory.

Paths are always relative to the root. Parent references ("..") are rejected
and nothing outside the root can be addressed.

The root comes from --root, $FSGUARD_ROOT, the config file, or defaults to
the fsguard directory under $XDG_DATA_HOME.`,
	SilenceUsage:  true,
	SilenceErrors: true, // errors are rendered in main
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			appLogger = logging.NewWriterLogger(cmd.ErrOrStderr(), true)
		} else {
			appLogger = logging.GetDefault()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlag, "root", "r", "", "Root directory (overrides config and environment)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/fsguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

// exitError carries a process exit status without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// loadConfig resolves the effective configuration for this invocation.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadFrom(configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if rootFlag != "" {
		cfg.Root = config.ExpandPath(rootFlag)
	}

	appLogger.DebugObject("config", cfg)
	return cfg, nil
}

// newManager builds a Manager for the configured root.
func newManager() (*fileops.Manager, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	m, err := fileops.New(cfg.Root,
		fileops.WithLogger(appLogger.With("root", cfg.Root)),
		fileops.WithMaxPathLength(cfg.MaxPathLength),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid root %q: %w", cfg.Root, err)
	}
	return m, cfg, nil
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(rootCmd.ErrOrStderr(), ErrorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute())
}
