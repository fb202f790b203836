package main

import (
	"github.com/spf13/cobra"

	"fsguard/internal/wasmexec"
	"fsguard/pkg/fileops"
)

var runMount bool

var runCmd = &cobra.Command{
	Use:   "run PATH [-- ARGS...]",
	Short: "Execute a WebAssembly module stored under the root",
	Long: `Execute a WebAssembly module stored under the root.

The module gets WASI preview1, the process stdout and stderr, and ARGS as its
arguments. With --mount the root is visible to the module as "/", read only.

A module that exits with a non-zero WASI status makes fsguard exit with the
same status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := newManager()
		if err != nil {
			return err
		}

		opts := []wasmexec.Option{
			wasmexec.WithLogger(appLogger),
			wasmexec.WithStdout(cmd.OutOrStdout()),
			wasmexec.WithStderr(cmd.ErrOrStderr()),
			wasmexec.WithArgs(args[1:]...),
		}
		if runMount {
			opts = append(opts, wasmexec.WithReadOnlyMount(m.Root()))
		}

		ctx := cmd.Context()
		executor := wasmexec.New(ctx, opts...)
		defer executor.Close(ctx)

		err = fileops.NewSourceManager(m, executor).Run(ctx, args[0])
		if code, ok := wasmexec.ExitCode(err); ok {
			return &exitError{code: int(code)}
		}
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runMount, "mount", false, "Mount the root read-only as / inside the module")
	rootCmd.AddCommand(runCmd)
}
