package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"albumus/internal/bitrate"
	"albumus/internal/config"
	"albumus/internal/media"
	"albumus/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE",
		Short: "Show a source file's audio streams and the encoder settings each format would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := probeConfig(ctx)
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFmpeg.ProbeBinary, path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			streams := result.AudioStreams()
			rows := make([][]string, 0, len(streams))
			for _, stream := range streams {
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecName,
					stream.SampleRate,
					strconv.Itoa(stream.Channels),
					stream.BitRate,
				})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{
				{Header: "Stream", Align: alignRight},
				{Header: "Codec"},
				{Header: "Sample rate", Align: alignRight},
				{Header: "Channels", Align: alignRight},
				{Header: "Bit rate", Align: alignRight},
			}, rows))
			fmt.Fprintf(out, "Duration: %.2fs  Container: %s\n", result.DurationSeconds(), result.Format.FormatName)

			rate, known := ffprobe.ProbeBitrate(cmd.Context(), cfg.FFmpeg.ProbeBinary, path)
			probe := bitrate.Probe{BitsPerSecond: rate, Known: known}
			decisions := make([][]string, 0, len(media.AllFormats))
			for _, format := range media.AllFormats {
				decision, err := bitrate.Decide(format, probe, cfg.FFmpeg.BitrateStrategy)
				if err != nil {
					return err
				}
				decisions = append(decisions, []string{string(format), string(decision.Mode), strconv.FormatInt(decision.Value, 10)})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{{Header: "Format"}, {Header: "Mode"}, {Header: "Value", Align: alignRight}}, decisions))
			if !known {
				fmt.Fprintln(out, "Source bitrate unknown; fallback quality applies")
			}
			return nil
		},
	}
}

// probeConfig uses the current project's config when one is selected and
// valid, otherwise the app default.
func probeConfig(ctx *commandContext) (*config.Project, error) {
	if _, cfg, err := ctx.loadProject(); err == nil {
		return cfg, nil
	}
	app, _, err := ctx.ensureApp()
	if err != nil {
		return nil, err
	}
	return config.ResolveProject(app.DefaultProjectConfig, "")
}
