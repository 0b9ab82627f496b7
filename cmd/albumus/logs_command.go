package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"albumus/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var task string
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of a task log",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch task {
			case compileLogTask, clearLogTask:
			default:
				return fmt.Errorf("unknown log %q (want %s or %s)", task, compileLogTask, clearLogTask)
			}
			app, _, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			path := app.LogFile(task)
			out := cmd.OutOrStdout()

			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return logs.Follow(followCtx, path, offset, 250*time.Millisecond, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().StringVarP(&task, "task", "t", compileLogTask, "Log to read: compile_audio or clear_output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}
