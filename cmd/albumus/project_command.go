package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"albumus/internal/project"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Select and inspect project directories",
	}
	projectCmd.AddCommand(newProjectUseCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	return projectCmd
}

func newProjectUseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use DIR",
		Short: "Make DIR the current project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := project.New(args[0])
			if err != nil {
				return err
			}
			if err := layout.Validate(); err != nil {
				return err
			}
			_, settings, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if err := ctx.saveSettings(settings.UseProject(layout.Root)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current project: %s\n", layout.Root)
			return nil
		},
	}
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent projects, dropping ones that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			pruned := settings.PruneRecent(project.IsValid)
			if len(pruned.DirRecent) != len(settings.DirRecent) || pruned.Dir != settings.Dir {
				if err := ctx.saveSettings(pruned); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if len(pruned.DirRecent) == 0 {
				fmt.Fprintln(out, "No recent projects")
				return nil
			}
			rows := make([][]string, 0, len(pruned.DirRecent))
			for i, dir := range pruned.DirRecent {
				current := ""
				if dir == pruned.Dir {
					current = "*"
				}
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), current, dir})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{{Header: "#", Align: alignRight}, {Header: "Current"}, {Header: "Directory"}}, rows))
			return nil
		},
	}
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current project layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.projectDir()
			if err != nil {
				return err
			}
			layout, err := project.New(dir)
			if err != nil {
				return err
			}
			validErr := layout.Validate()
			rows := [][]string{
				{"Root", layout.Root},
				{"Input", layout.In},
				{"Output", layout.Out},
				{"Config", layout.Config},
				{"Config format", configKind(layout.Config)},
				{"Valid", yesNo(validErr == nil)},
			}
			if validErr != nil {
				rows = append(rows, []string{"Problem", validErr.Error()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(columns("Field", "Value"), rows))
			return nil
		},
	}
}

func configKind(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
