package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fsguard/internal/config"
	"fsguard/pkg/fileops"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file and create the root directory",
	Long: `Write a config file for the root given with --root (or the default root)
and create the root directory if it does not exist yet.

An existing config file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			path = config.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}

		cfg := config.DefaultConfig()
		if rootFlag != "" {
			cfg.Root = config.ExpandPath(rootFlag)
		}

		// Validates the root the same way every other command will.
		resolver, err := fileops.NewResolver(cfg.Root)
		if err != nil {
			return fmt.Errorf("invalid root %q: %w", cfg.Root, err)
		}
		cfg.Root = resolver.Root()

		if err := os.MkdirAll(cfg.Root, 0755); err != nil {
			return fmt.Errorf("failed to create root directory: %w", err)
		}
		if err := cfg.SaveTo(path); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("✓"), "config written to", path)
		fmt.Fprintln(cmd.ErrOrStderr(), SubtitleStyle.Render("root: "+cfg.Root))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
