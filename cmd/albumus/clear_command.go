package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const clearLogTask = "clear_output"

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the project's generated out/ directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, _, err := ctx.loadProject()
			if err != nil {
				return err
			}
			release, err := layout.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			logger, err := ctx.newLogger(cmd.ErrOrStderr(), clearLogTask)
			if err != nil {
				return err
			}
			defer logger.Close()

			deleted, err := layout.ClearOutput(logger.Logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if deleted {
				fmt.Fprintf(out, "Deleted %s\n", layout.Out)
			} else {
				fmt.Fprintf(out, "Nothing to delete: %s does not exist\n", layout.Out)
			}
			return nil
		},
	}
}
