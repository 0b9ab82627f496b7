package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"albumus/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the current project and the ffmpeg toolchain",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, cfg, err := ctx.loadProject()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), layout, cfg)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				kind := statusOK
				switch {
				case !result.Passed && result.Optional:
					kind = statusWarn
				case !result.Passed:
					kind = statusError
				}
				rows = append(rows, []string{result.Name, colorKind(kind, colorize), result.Detail})
			}
			fmt.Fprintln(out, renderTable(columns("Check", "Status", "Detail"), rows))
			return preflight.Failed(results)
		},
	}
}
