package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	writeFromFile string
	existsQuiet   bool
)

var readCmd = &cobra.Command{
	Use:   "read PATH",
	Short: "Print a file's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}

		contents, err := m.Read(args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(contents)
		return err
	},
}

var writeCmd = &cobra.Command{
	Use:   "write PATH [CONTENT]",
	Short: "Create or overwrite a file",
	Long: `Create or overwrite a file, creating its parent directory when missing.

Content is taken from the CONTENT argument, from --from, or from stdin, in
that order.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}

		var contents []byte
		switch {
		case len(args) == 2:
			contents = []byte(args[1])
		case writeFromFile != "":
			contents, err = os.ReadFile(writeFromFile)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", writeFromFile, err)
			}
		default:
			contents, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		if err := m.Write(args[0], contents); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("✓"), "wrote", args[0], SubtitleStyle.Render(fmt.Sprintf("(%d bytes)", len(contents))))
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:     "mv OLD NEW",
	Aliases: []string{"move"},
	Short:   "Rename a file or directory",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}

		if err := m.Move(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("✓"), "moved", args[0], "→", args[1])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "rm PATH",
	Aliases: []string{"delete"},
	Short:   "Delete a file or an entire directory tree",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}

		if err := m.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("✓"), "deleted", args[0])
		return nil
	},
}

var existsCmd = &cobra.Command{
	Use:   "exists PATH",
	Short: "Report whether a path exists",
	Long: `Print "true" or "false". With --quiet nothing is printed and the exit
status is 1 when the path does not exist.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}

		ok, err := m.Exists(args[0])
		if err != nil {
			return err
		}
		if existsQuiet {
			if !ok {
				return &exitError{code: 1}
			}
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var rootDirCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the normalized root directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.Root())
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeFromFile, "from", "", "Read content from this local file")
	existsCmd.Flags().BoolVarP(&existsQuiet, "quiet", "q", false, "No output; exit status 1 when missing")

	rootCmd.AddCommand(readCmd, writeCmd, moveCmd, deleteCmd, existsCmd, rootDirCmd)
}
